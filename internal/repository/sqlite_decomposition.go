package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/db"
	"github.com/alexanderramin/reqplan/internal/domain"
)

// SQLiteDecompositionCacheRepo implements DecompositionCacheRepo.
type SQLiteDecompositionCacheRepo struct {
	db db.DBTX
}

func NewSQLiteDecompositionCacheRepo(db db.DBTX) *SQLiteDecompositionCacheRepo {
	return &SQLiteDecompositionCacheRepo{db: db}
}

func (r *SQLiteDecompositionCacheRepo) Get(ctx context.Context, runID string) (*domain.CachedDecomposition, error) {
	var (
		c         domain.CachedDecomposition
		fetchedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT run_id, payload, fetched_at FROM decomposition_cache WHERE run_id = ?`, runID,
	).Scan(&c.RunID, &c.Payload, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cached decomposition %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("reading cached decomposition: %w", err)
	}

	c.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at: %w", err)
	}
	return &c, nil
}

// Put inserts or replaces the payload for c.RunID. A zero FetchedAt is
// stamped with the current time.
func (r *SQLiteDecompositionCacheRepo) Put(ctx context.Context, c *domain.CachedDecomposition) error {
	if c.RunID == "" {
		return errors.New("caching decomposition: run id is required")
	}
	query := `INSERT INTO decomposition_cache (run_id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`
	if _, err := r.db.ExecContext(ctx, query, c.RunID, c.Payload, formatTime(c.FetchedAt)); err != nil {
		return fmt.Errorf("caching decomposition: %w", err)
	}
	return nil
}

func (r *SQLiteDecompositionCacheRepo) Delete(ctx context.Context, runID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decomposition_cache WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("deleting cached decomposition: %w", err)
	}
	return nil
}

// ListRunIDs returns cached run ids, most recently fetched first.
func (r *SQLiteDecompositionCacheRepo) ListRunIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT run_id FROM decomposition_cache ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cached decompositions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning cached decomposition row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached decompositions: %w", err)
	}
	return ids, nil
}
