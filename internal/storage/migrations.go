package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					member_id TEXT NOT NULL,
					merchant_name TEXT NOT NULL,
					amount_minor INTEGER NOT NULL,
					card_id TEXT,
					raw_category_hint TEXT,
					category TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_member_date ON transactions(member_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category)`,

				`CREATE TABLE IF NOT EXISTS member_cards (
					member_id TEXT NOT NULL,
					card_id TEXT NOT NULL,
					default_category TEXT DEFAULT '',
					linked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (member_id, card_id)
				)`,

				`CREATE TABLE IF NOT EXISTS perks (
					id TEXT PRIMARY KEY,
					member_id TEXT NOT NULL,
					title TEXT NOT NULL,
					description TEXT,
					source TEXT NOT NULL,
					source_name TEXT,
					category TEXT,
					value_low_minor INTEGER DEFAULT 0,
					value_high_minor INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					retired_at DATETIME
				)`,
				`CREATE INDEX idx_perks_member ON perks(member_id)`,

				`CREATE TABLE IF NOT EXISTS perk_usage_events (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					perk_id TEXT NOT NULL,
					transaction_id TEXT,
					used_at DATETIME NOT NULL,
					FOREIGN KEY (perk_id) REFERENCES perks(id)
				)`,
				`CREATE UNIQUE INDEX idx_perk_usage_natural_key
					ON perk_usage_events(perk_id, transaction_id)
					WHERE transaction_id IS NOT NULL`,
				`CREATE INDEX idx_perk_usage_perk ON perk_usage_events(perk_id, used_at)`,

				`CREATE TABLE IF NOT EXISTS alerts (
					id TEXT PRIMARY KEY,
					member_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					perk_id TEXT,
					kind TEXT NOT NULL,
					suggestion TEXT,
					estimated_savings_minor INTEGER NOT NULL,
					status TEXT NOT NULL DEFAULT 'PENDING',
					created_at DATETIME NOT NULL,
					acted_at DATETIME
				)`,
				`CREATE INDEX idx_alerts_member_created ON alerts(member_id, created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index pending alerts for the sweep",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_alerts_status_created ON alerts(status, created_at)`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Add merchant location to transactions",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE transactions ADD COLUMN merchant_location TEXT DEFAULT ''`)
			return err
		},
	},
	{
		Version:     4,
		Description: "Deduplicate transactions by id only",
		Up: func(tx *sql.Tx) error {
			// Transaction identity is the id. The hash is a content
			// fingerprint, not a key: two distinct purchases can share one
			// (same merchant, amount, and day), so the UNIQUE constraint
			// from v1 has to go. SQLite cannot drop a constraint in place.
			queries := []string{
				`CREATE TABLE transactions_new (
					id TEXT PRIMARY KEY,
					hash TEXT NOT NULL,
					date DATETIME NOT NULL,
					member_id TEXT NOT NULL,
					merchant_name TEXT NOT NULL,
					amount_minor INTEGER NOT NULL,
					card_id TEXT,
					raw_category_hint TEXT,
					category TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					merchant_location TEXT DEFAULT ''
				)`,
				`INSERT INTO transactions_new
					SELECT id, hash, date, member_id, merchant_name, amount_minor,
					       card_id, raw_category_hint, category, created_at,
					       merchant_location
					FROM transactions`,
				`DROP TABLE transactions`,
				`ALTER TABLE transactions_new RENAME TO transactions`,
				`CREATE INDEX idx_transactions_member_date ON transactions(member_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category)`,
				`CREATE INDEX idx_transactions_hash ON transactions(hash)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
