package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// StateRepo stores opaque JSON blobs by key.
type StateRepo interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// DecompositionCacheRepo stores the raw decomposition payload fetched for
// each run.
type DecompositionCacheRepo interface {
	Get(ctx context.Context, runID string) (*domain.CachedDecomposition, error)
	Put(ctx context.Context, c *domain.CachedDecomposition) error
	Delete(ctx context.Context, runID string) error
	ListRunIDs(ctx context.Context) ([]string, error)
}
