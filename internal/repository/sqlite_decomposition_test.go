package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/reqplan/internal/db"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompositionCache_PutGet(t *testing.T) {
	repo := NewSQLiteDecompositionCacheRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	fetched := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Put(ctx, &domain.CachedDecomposition{
		RunID: "run-1", Payload: []byte(testutil.DecompositionJSON), FetchedAt: fetched,
	}))

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.JSONEq(t, testutil.DecompositionJSON, string(got.Payload))
	assert.True(t, fetched.Equal(got.FetchedAt))
}

func TestDecompositionCache_ZeroFetchedAtIsStamped(t *testing.T) {
	repo := NewSQLiteDecompositionCacheRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	before := time.Now().Add(-time.Second)

	require.NoError(t, repo.Put(ctx, &domain.CachedDecomposition{RunID: "r", Payload: []byte("{}")}))
	got, err := repo.Get(ctx, "r")
	require.NoError(t, err)
	assert.True(t, got.FetchedAt.After(before))
}

func TestDecompositionCache_RequiresRunID(t *testing.T) {
	repo := NewSQLiteDecompositionCacheRepo(testutil.NewTestDB(t))
	err := repo.Put(context.Background(), &domain.CachedDecomposition{Payload: []byte("{}")})
	require.Error(t, err)
}

func TestDecompositionCache_ListAndDelete(t *testing.T) {
	repo := NewSQLiteDecompositionCacheRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Put(ctx, &domain.CachedDecomposition{
			RunID: id, Payload: []byte("{}"), FetchedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	ids, err := repo.ListRunIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	require.NoError(t, repo.Delete(ctx, "mid"))
	_, err = repo.Get(ctx, "mid")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err = repo.ListRunIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, ids)
}

func TestDecompositionCache_TxScopedRollback(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteDecompositionCacheRepo(database).Put(ctx, &domain.CachedDecomposition{RunID: "r1", Payload: []byte("{}")}))
	require.NoError(t, NewSQLiteStateRepo(database).Put(ctx, "run-store", []byte("{}")))

	errInjected := errors.New("injected")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errInjected}
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := NewSQLiteDecompositionCacheRepo(tx).Delete(ctx, "r1"); err != nil {
			return err
		}
		return NewSQLiteStateRepo(tx).Delete(ctx, "run-store")
	})
	require.ErrorIs(t, err, errInjected)

	_, err = NewSQLiteDecompositionCacheRepo(database).Get(ctx, "r1")
	require.NoError(t, err, "first delete rolled back")
}
