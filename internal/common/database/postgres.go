// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"content-policy-workers/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Schema holds the tables the content-review workers read and write.
// policy_decisions is append-only: re-reviews add rows.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS submitter_profiles (
		user_id        TEXT PRIMARY KEY,
		birth_date     DATE,
		age_tier       TEXT,
		tier_override  TEXT,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS policy_decisions (
		id                 UUID PRIMARY KEY,
		content_id         TEXT NOT NULL,
		review_type        TEXT NOT NULL DEFAULT '',
		target_age_tier    TEXT NOT NULL,
		status             TEXT NOT NULL,
		score              INTEGER NOT NULL,
		scripture_accurate BOOLEAN NOT NULL,
		lexicon_version    TEXT NOT NULL,
		tier_version       TEXT NOT NULL,
		decision           JSONB NOT NULL,
		evaluated_at       TIMESTAMPTZ NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS policy_decisions_content_idx
		ON policy_decisions (content_id, review_type, evaluated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id          UUID PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		action      TEXT NOT NULL,
		details     JSONB,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
