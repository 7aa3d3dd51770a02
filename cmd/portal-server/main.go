package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicportal/clinicportal/internal/backend"
	"github.com/clinicportal/clinicportal/internal/config"
	"github.com/clinicportal/clinicportal/internal/domain/booking"
	"github.com/clinicportal/clinicportal/internal/domain/identity"
	"github.com/clinicportal/clinicportal/internal/platform/auth"
	"github.com/clinicportal/clinicportal/internal/platform/db"
	"github.com/clinicportal/clinicportal/internal/platform/middleware"
	"github.com/clinicportal/clinicportal/internal/platform/notify"
	"github.com/clinicportal/clinicportal/internal/platform/session"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "Clinic portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()
	session.Configure(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		// Unknown backend kinds land here. Refusing to start beats guessing
		// a storage strategy and orphaning every existing record.
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	var pool *pgxpool.Pool
	if backend.Kind(cfg.Backend) == backend.Database {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	}

	repos, err := backend.New(backend.Kind(cfg.Backend), cfg.DataDir, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build storage backend")
	}
	logger.Info().Stringer("backend", backend.Kind(cfg.Backend)).Msg("storage backend ready")

	hub := notify.Default()
	hub.Attach(notify.LogListener{Log: logger.With().Str("component", "bookings").Logger()})

	identitySvc := identity.NewService(repos.Patients, repos.Specialists)
	bookingSvc := booking.NewService(repos.Visits, hub)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "dev-only-secret"
		logger.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	tokens := auth.NewTokenIssuer(secret, 12*time.Hour)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	api := e.Group("/api/v1", auth.Middleware(tokens))

	identity.NewHandler(identitySvc, tokens).RegisterRoutes(e, api)
	booking.NewHandler(bookingSvc, identitySvc).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrate")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema applied.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo patients and specialists into the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, _ := cmd.Flags().GetInt("patients")
			specialists, _ := cmd.Flags().GetInt("specialists")

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			var pool *pgxpool.Pool
			if backend.Kind(cfg.Backend) == backend.Database {
				pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()
			}
			repos, err := backend.New(backend.Kind(cfg.Backend), cfg.DataDir, pool, logger)
			if err != nil {
				return err
			}

			return seed(ctx, repos, patients, specialists)
		},
	}
	cmd.Flags().Int("patients", 10, "Number of demo patients")
	cmd.Flags().Int("specialists", 5, "Number of demo specialists")
	return cmd
}

var specializations = []string{
	"Cardiology", "Dermatology", "Neurology", "Orthopedics", "Pediatrics",
	"Ophthalmology", "Psychiatry", "Radiology", "Oncology", "General Medicine",
}

func seed(ctx context.Context, repos *backend.Set, patients, specialists int) error {
	faker := gofakeit.New(0)

	created := 0
	for i := 0; i < patients; i++ {
		p, err := identity.NewPatient(
			faker.Numerify("##########"),
			faker.FirstName(),
			faker.LastName(),
			faker.Email(),
			faker.Password(true, true, true, false, false, 10),
		)
		if err != nil {
			return err
		}
		p.Phone = faker.Phone()
		p.BirthDate = faker.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
		)
		if repos.Patients.Save(ctx, p) {
			created++
		}
	}
	fmt.Printf("Seeded %d patient(s).\n", created)

	created = 0
	for i := 0; i < specialists; i++ {
		sp, err := identity.NewSpecialist(
			faker.FirstName(),
			faker.LastName(),
			faker.Email(),
			specializations[i%len(specializations)],
			faker.Password(true, true, true, false, false, 10),
		)
		if err != nil {
			return err
		}
		sp.Phone = faker.Phone()
		if repos.Specialists.Save(ctx, sp) {
			created++
		}
	}
	fmt.Printf("Seeded %d specialist(s).\n", created)
	return nil
}
