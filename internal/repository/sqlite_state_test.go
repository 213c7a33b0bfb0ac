package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/reqplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepo_PutGet(t *testing.T) {
	repo := NewSQLiteStateRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "run-store", []byte(`{"version":1}`)))
	got, err := repo.Get(ctx, "run-store")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(got))
}

func TestStateRepo_PutOverwrites(t *testing.T) {
	repo := NewSQLiteStateRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k", []byte("one")))
	require.NoError(t, repo.Put(ctx, "k", []byte("two")))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestStateRepo_GetMissing(t *testing.T) {
	repo := NewSQLiteStateRepo(testutil.NewTestDB(t))
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStateRepo_Delete(t *testing.T) {
	repo := NewSQLiteStateRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "k", []byte("v")))
	require.NoError(t, repo.Delete(ctx, "k"))
	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "k"), "deleting twice is fine")
}
