package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// schema is idempotent; it is applied on every start and by `civicsafectl migrate`.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'MODERATOR', 'USER')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_key ON accounts (email)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id          UUID PRIMARY KEY,
		report_id   TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		type        TEXT NOT NULL,
		location    TEXT,
		latitude    DOUBLE PRECISION,
		longitude   DOUBLE PRECISION,
		image       TEXT,
		status      TEXT NOT NULL DEFAULT 'PENDING'
		            CHECK (status IN ('PENDING', 'IN_PROGRESS', 'RESOLVED', 'DISMISSED')),
		department  TEXT,
		author_id   UUID REFERENCES accounts (id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE reports ADD COLUMN IF NOT EXISTS department TEXT`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reports_report_id_key ON reports (report_id)`,
	`CREATE INDEX IF NOT EXISTS reports_author_created_idx ON reports (author_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS reports_status_idx ON reports (status)`,
}

// EnsureSchema creates the tables and indexes the service needs
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Database schema ensured")
	return nil
}
