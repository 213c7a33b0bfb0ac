package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/reqplan/internal/db"
)

// SQLiteStateRepo implements StateRepo over the kv_store table.
type SQLiteStateRepo struct {
	db db.DBTX
}

func NewSQLiteStateRepo(db db.DBTX) *SQLiteStateRepo {
	return &SQLiteStateRepo{db: db}
}

func (r *SQLiteStateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("state %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading state %q: %w", key, err)
	}
	return []byte(value), nil
}

func (r *SQLiteStateRepo) Put(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(value), nowUTC()); err != nil {
		return fmt.Errorf("writing state %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SQLiteStateRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting state %q: %w", key, err)
	}
	return nil
}
