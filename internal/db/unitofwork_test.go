package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/reqplan/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, db.NewSQLiteUnitOfWork(conn)
}

func putKV(ctx context.Context, tx db.DBTX, key string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv_store (key, value, updated_at) VALUES (?, '{}', 'now')`, key)
	return err
}

func hasKey(t *testing.T, conn *sql.DB, key string) bool {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM kv_store WHERE key = ?`, key).Scan(&n))
	return n > 0
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	conn, uow := setup(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return putKV(ctx, tx, "run-store")
	})
	require.NoError(t, err)
	assert.True(t, hasKey(t, conn, "run-store"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	conn, uow := setup(t)
	errBoom := errors.New("boom")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := putKV(ctx, tx, "a"); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.False(t, hasKey(t, conn, "a"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	conn, uow := setup(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = putKV(ctx, tx, "p")
			panic("boom")
		})
	})
	assert.False(t, hasKey(t, conn, "p"))
}

func TestWithinTx_SpansBothTables(t *testing.T) {
	conn, uow := setup(t)
	_, err := conn.Exec(`INSERT INTO decomposition_cache (run_id, payload, fetched_at) VALUES ('r1', '{}', 'now')`)
	require.NoError(t, err)

	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM decomposition_cache WHERE run_id = 'r1'`); err != nil {
			return err
		}
		if err := putKV(ctx, tx, "dup"); err != nil {
			return err
		}
		return putKV(ctx, tx, "dup")
	})
	require.Error(t, err, "primary key violation aborts the unit")

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM decomposition_cache`).Scan(&n))
	assert.Equal(t, 1, n, "delete rolled back with the failed insert")
	assert.False(t, hasKey(t, conn, "dup"))
}
