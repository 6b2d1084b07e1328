package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=portfolio sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates the schema when missing. Safe to call on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			kind TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_ref TEXT NOT NULL DEFAULT '',
			native_ccy TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS assets_symbol_idx ON assets (UPPER(symbol))`,
		`CREATE TABLE IF NOT EXISTS holdings (
			id UUID PRIMARY KEY,
			account TEXT NOT NULL DEFAULT 'Default',
			asset_id UUID NOT NULL REFERENCES assets (id),
			qty NUMERIC NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS holdings_account_idx ON holdings (account)`,
		`CREATE TABLE IF NOT EXISTS price_points (
			id UUID PRIMARY KEY,
			asset_id UUID NOT NULL REFERENCES assets (id),
			ts TIMESTAMPTZ NOT NULL,
			price NUMERIC NOT NULL,
			base_ccy TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS price_points_latest_idx ON price_points (asset_id, base_ccy, ts DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
