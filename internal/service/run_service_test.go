package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunService_RefreshReplacesCacheAndUpdatesSelection(t *testing.T) {
	fb, store, _, _ := setup(t)
	ctx := context.Background()

	old := testutil.NewTestRun("run-old")
	sel := testutil.NewTestRun("run-sel")
	require.NoError(t, store.AddRun(ctx, old))
	require.NoError(t, store.SelectRun(ctx, &sel))

	fb.listed = []domain.Run{
		testutil.NewTestRun("run-sel", testutil.WithSummaryStatus(domain.StepCompleted)),
		testutil.NewTestRun("run-new"),
	}
	obs := &recordingObserver{}
	svc := NewRunService(fb, store, nil, obs)

	runs, err := svc.Refresh(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	cached := svc.Cached()
	require.Len(t, cached, 2)
	assert.Equal(t, "run-sel", cached[0].ID)
	_, ok := store.Run("run-old")
	assert.False(t, ok, "refresh replaces the whole list")

	require.NotNil(t, svc.Selected())
	assert.Equal(t, domain.StepCompleted, svc.Selected().Steps.Summary.Status)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "refresh-runs", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 2, obs.events[0].Fields["count"])
}

func TestRunService_RefreshError(t *testing.T) {
	fb, store, _, _ := setup(t)
	fb.err = backend.ErrUnavailable
	obs := &recordingObserver{}

	_, err := NewRunService(fb, store, nil, obs).Refresh(context.Background(), 20)
	require.ErrorIs(t, err, backend.ErrUnavailable)
	require.Len(t, obs.events, 1)
	assert.False(t, obs.events[0].Success)
}

func TestRunService_ShowMergesIntoCache(t *testing.T) {
	fb, store, _, _ := setup(t)
	ctx := context.Background()
	require.NoError(t, store.AddRun(ctx, testutil.NewTestRun("run-1")))

	fb.runs["run-1"] = testutil.NewTestRun("run-1", testutil.WithRunStatus(domain.RunProcessing))
	fb.runs["run-2"] = testutil.NewTestRun("run-2")
	svc := NewRunService(fb, store, nil)

	run, err := svc.Show(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunProcessing, run.Status)
	cached, _ := store.Run("run-1")
	assert.Equal(t, domain.RunProcessing, cached.Status)

	_, err = svc.Show(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, "run-2", store.Runs()[0].ID, "unknown runs are cached as newest")

	_, err = svc.Show(ctx, "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestRunService_SelectFetchesUncachedRun(t *testing.T) {
	fb, store, _, _ := setup(t)
	fb.runs["run-9"] = testutil.NewTestRun("run-9")
	svc := NewRunService(fb, store, nil)

	run, err := svc.Select(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, "run-9", run.ID)
	require.NotNil(t, svc.Selected())
	assert.Equal(t, "run-9", svc.Selected().ID)
	assert.Equal(t, 1, fb.getRunCalls)

	_, err = svc.Select(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, 1, fb.getRunCalls, "cached runs are selected without a fetch")
}

func TestRunService_ClearKeepsSummaries(t *testing.T) {
	fb, store, _, _ := setup(t)
	ctx := context.Background()
	run := testutil.NewTestRun("run-1")
	require.NoError(t, store.AddRun(ctx, run))
	require.NoError(t, store.SelectRun(ctx, &run))
	require.NoError(t, store.SetSummary(ctx, "run-1", domain.DocumentSummary{ProjectName: "Portal"}))

	svc := NewRunService(fb, store, nil)
	require.NoError(t, svc.Clear(ctx))

	assert.Empty(t, svc.Cached())
	assert.Nil(t, svc.Selected())
	_, ok := store.Summary("run-1")
	assert.True(t, ok)
}

func TestRunService_ForgetDropsRunAndCachedDecomposition(t *testing.T) {
	fb, store, cache, database := setup(t)
	ctx := context.Background()
	run := testutil.NewTestRun("run-1")
	require.NoError(t, store.AddRun(ctx, run))
	require.NoError(t, store.SelectRun(ctx, &run))
	require.NoError(t, cache.Put(ctx, &domain.CachedDecomposition{RunID: "run-1", Payload: []byte(`{}`)}))

	svc := NewRunService(fb, store, testutil.NewTestUoW(database))
	require.NoError(t, svc.Forget(ctx, "run-1"))

	assert.Empty(t, svc.Cached())
	assert.Nil(t, svc.Selected())
	ids, err := cache.ListRunIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRunService_ForgetRollsBackOnFailure(t *testing.T) {
	fb, store, cache, database := setup(t)
	ctx := context.Background()
	require.NoError(t, store.AddRun(ctx, testutil.NewTestRun("run-1")))
	require.NoError(t, cache.Put(ctx, &domain.CachedDecomposition{RunID: "run-1", Payload: []byte(`{}`)}))

	// The second exec inside the transaction is the store write.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 2, Err: errors.New("disk full")}
	svc := NewRunService(fb, store, uow)
	require.Error(t, svc.Forget(ctx, "run-1"))

	assert.Len(t, svc.Cached(), 1, "the store keeps the run when the write fails")
	ids, err := cache.ListRunIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)
}

func TestResolveRun(t *testing.T) {
	runs := []domain.Run{
		testutil.NewTestRun("3f2a9c10-0000-0000-0000-000000000001"),
		testutil.NewTestRun("3f2b7d20-0000-0000-0000-000000000002"),
		testutil.NewTestRun("a1"),
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"exact", "a1", "a1", nil},
		{"unique prefix", "3f2a", runs[0].ID, nil},
		{"case insensitive", "3F2B", runs[1].ID, nil},
		{"ambiguous", "3f2", "", ErrAmbiguousRun},
		{"unknown", "zz", "", ErrRunNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveRun(runs, tc.ref)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.ID)
		})
	}
}

func TestRunService_ResolveEmptyUsesSelection(t *testing.T) {
	fb, store, _, _ := setup(t)
	svc := NewRunService(fb, store, nil)

	_, err := svc.Resolve("")
	assert.ErrorIs(t, err, ErrNoRunSelected)

	run := testutil.NewTestRun("run-1")
	require.NoError(t, store.SelectRun(context.Background(), &run))
	got, err := svc.Resolve(" ")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}
