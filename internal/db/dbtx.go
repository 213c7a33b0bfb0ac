package db

import (
	"context"
	"database/sql"
)

// DBTX is what repositories need from a connection. Both *sql.DB and
// *sql.Tx satisfy it, so a repository built on a transaction takes part in
// that transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
