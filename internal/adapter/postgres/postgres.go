// Package postgres implements the repository ports over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"deficit/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.MeasurementRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			date DATE NOT NULL,
			weight DOUBLE PRECISION,
			waist DOUBLE PRECISION,
			neck DOUBLE PRECISION,
			calories INTEGER,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT uix_user_date UNIQUE (user_id, date)
		);`,
		"CREATE INDEX IF NOT EXISTS idx_measurements_user_id ON measurements(user_id);",
		"CREATE INDEX IF NOT EXISTS idx_measurements_date ON measurements(date);",
		`CREATE TABLE IF NOT EXISTS user_profiles (
			user_id BIGINT PRIMARY KEY,
			start_date DATE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Older installs created the metric columns NOT NULL; relax them so a
	// row can carry any subset of fields.
	relaxStmts := []string{
		"ALTER TABLE measurements ALTER COLUMN weight DROP NOT NULL;",
		"ALTER TABLE measurements ALTER COLUMN waist DROP NOT NULL;",
		"ALTER TABLE measurements ALTER COLUMN neck DROP NOT NULL;",
		"ALTER TABLE measurements ALTER COLUMN calories DROP NOT NULL;",
		"ALTER TABLE measurements ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT now();",
	}
	for _, stmt := range relaxStmts {
		_, _ = d.sql.ExecContext(ctx, stmt)
	}
	return nil
}
