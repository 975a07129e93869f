package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is applied idempotently at startup; there is no versioned
// migration history for this service.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		client_id TEXT NOT NULL,
		number TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		currency TEXT NOT NULL,
		alias TEXT NOT NULL DEFAULT '',
		balance NUMERIC(18,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_client_id ON accounts (client_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES accounts (id),
		type TEXT NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_account_id ON movements (account_id, created_at DESC)`,
}

// Migrate creates the accounts and movements tables if they do not
// exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
