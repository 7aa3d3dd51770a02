package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The portal owns three tables. pazienti keys on the health card, visite on
// the (patient, date, time) tuple, and specialista carries a sequence-backed
// surrogate id next to its composite natural key. The unique constraints are
// what turns a duplicate insert into the storage layer's save=false; the
// visite slot index in particular makes a double-booked specialist slot fail
// the insert even when the racing writer is another process.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS pazienti (
		health_card TEXT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		birth_date  TIMESTAMPTZ NOT NULL DEFAULT '0001-01-01T00:00:00Z',
		phone       TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL,
		conditions  TEXT NOT NULL DEFAULT '',
		password    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS pazienti_email_idx ON pazienti (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS specialista (
		id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		first_name     TEXT NOT NULL,
		last_name      TEXT NOT NULL,
		birth_date     TIMESTAMPTZ NOT NULL DEFAULT '0001-01-01T00:00:00Z',
		phone          TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL,
		specialization TEXT NOT NULL,
		password       TEXT NOT NULL,
		UNIQUE (first_name, last_name, email, specialization)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS specialista_email_idx ON specialista (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS visite (
		patient_key   TEXT NOT NULL,
		visit_date    TIMESTAMPTZ NOT NULL,
		visit_time    TEXT NOT NULL,
		specialist_id BIGINT NOT NULL,
		kind          TEXT NOT NULL,
		reason        TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'Booked',
		PRIMARY KEY (patient_key, visit_date, visit_time)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS visite_slot_idx ON visite (specialist_id, visit_date, visit_time)`,
}

// Migrate applies the portal schema. Statements are idempotent so running
// migrate on an existing database is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
