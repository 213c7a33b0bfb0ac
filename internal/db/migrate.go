package db

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order on every open. Each statement must be
// safe to re-run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS decomposition_cache (
		run_id     TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_decomposition_cache_fetched ON decomposition_cache(fetched_at)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
