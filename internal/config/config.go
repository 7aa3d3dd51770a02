package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the startup configuration, read from the environment and an
// optional .env file. BACKEND selects the storage strategy for the whole
// process: 0 = RAM, 1 = Database, 2 = File.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	Backend     int    `mapstructure:"BACKEND"`
	DataDir     string `mapstructure:"DATA_DIR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("BACKEND", 0)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BACKEND")
	v.BindEnv("DATA_DIR")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate refuses configurations the server must not guess around. An
// unrecognized BACKEND value in particular is fatal: starting against the
// wrong storage would silently sever every existing record.
func (c *Config) Validate() error {
	switch c.Backend {
	case 0, 2:
	case 1:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when BACKEND=1 (database)")
		}
	default:
		return fmt.Errorf("BACKEND must be 0 (ram), 1 (database) or 2 (file), got %d", c.Backend)
	}
	if c.Backend == 2 && c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required when BACKEND=2 (file)")
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	return nil
}
