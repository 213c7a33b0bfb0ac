package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/importer"
	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/alexanderramin/reqplan/internal/repository"
	"github.com/alexanderramin/reqplan/internal/runstore"
)

// refreshLimit is how many runs are re-fetched after a decomposition.
const refreshLimit = 20

type decompositionService struct {
	backend  DecompositionBackend
	cache    repository.DecompositionCacheRepo
	store    *runstore.Store
	logger   *slog.Logger
	observer UseCaseObserver
	now      func() time.Time
}

func NewDecompositionService(
	b DecompositionBackend,
	cache repository.DecompositionCacheRepo,
	store *runstore.Store,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) DecompositionService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &decompositionService{
		backend:  b,
		cache:    cache,
		store:    store,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *decompositionService) LoadRaw(ctx context.Context, runID string, refresh bool) ([]byte, error) {
	raw, _, _, err := s.loadRaw(ctx, runID, refresh)
	return raw, err
}

func (s *decompositionService) loadRaw(ctx context.Context, runID string, refresh bool) ([]byte, bool, time.Time, error) {
	if !refresh {
		cached, err := s.cache.Get(ctx, runID)
		switch {
		case err == nil:
			return cached.Payload, true, cached.FetchedAt, nil
		case !errors.Is(err, repository.ErrNotFound):
			return nil, false, time.Time{}, err
		}
	}

	raw, err := s.backend.GetDecompositionRaw(ctx, runID)
	if err != nil {
		return nil, false, time.Time{}, fmt.Errorf("fetching decomposition: %w", err)
	}
	fetchedAt := s.now().UTC()
	if err := s.cache.Put(ctx, &domain.CachedDecomposition{RunID: runID, Payload: raw, FetchedAt: fetchedAt}); err != nil {
		return nil, false, time.Time{}, err
	}
	return raw, false, fetchedAt, nil
}

func (s *decompositionService) Load(ctx context.Context, runID string, refresh bool) (loaded *Loaded, err error) {
	fields := map[string]any{"run_id": runID, "refresh": refresh}
	defer track(ctx, s.observer, "load-decomposition", fields)(&err)

	raw, fromCache, fetchedAt, err := s.loadRaw(ctx, runID, refresh)
	if err != nil {
		return nil, err
	}
	fields["from_cache"] = fromCache

	schema, err := importer.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Loaded{
		Decomposition: importer.Convert(schema),
		Raw:           raw,
		Problems:      importer.Validate(schema),
		FromCache:     fromCache,
		FetchedAt:     fetchedAt,
	}, nil
}

func (s *decompositionService) Trigger(ctx context.Context, runID string) (loaded *Loaded, err error) {
	defer track(ctx, s.observer, "trigger-decomposition", map[string]any{"run_id": runID})(&err)

	if err = s.backend.TriggerDecomposition(ctx, runID); err != nil {
		return nil, fmt.Errorf("starting decomposition: %w", err)
	}
	return s.Load(ctx, runID, true)
}

func (s *decompositionService) Stream(ctx context.Context, runID string, mode StreamMode, onState func(progress.State)) (final progress.State, err error) {
	fields := map[string]any{"run_id": runID, "mode": mode.String()}
	defer track(ctx, s.observer, "stream-decomposition", fields)(&err)

	if onState == nil {
		onState = func(progress.State) {}
	}

	var acc progress.Accumulator
	acc.Start()
	onState(acc.State())

	onEvent := func(e progress.Event) {
		onState(acc.Apply(e))
	}

	run := s.backend.DecomposeStreaming
	if mode == StreamEnhanced {
		run = s.backend.DecomposeEnhanced
	}
	_, err = run(ctx, runID, onEvent)

	if err != nil {
		if !acc.State().Done() {
			onState(acc.Fail(err.Error()))
		}
		return acc.State(), err
	}
	final = acc.State()
	fields["epics_count"] = final.EpicsCount
	fields["was_repaired"] = final.WasRepaired

	s.afterCompletion(ctx, runID)
	return final, nil
}

// afterCompletion refreshes cached runs and the decomposition. Failures
// are logged; the decomposition itself already succeeded.
func (s *decompositionService) afterCompletion(ctx context.Context, runID string) {
	if runs, err := s.backend.ListRuns(ctx, refreshLimit); err != nil {
		s.logger.Warn("refreshing runs after decomposition", "run_id", runID, "error", err)
	} else if err := s.store.SetRuns(ctx, runs); err != nil {
		s.logger.Warn("caching runs after decomposition", "run_id", runID, "error", err)
	}
	if _, err := s.LoadRaw(ctx, runID, true); err != nil {
		s.logger.Warn("reloading decomposition", "run_id", runID, "error", err)
	}
}

func (s *decompositionService) Validate(ctx context.Context, runID string) (backend.ValidationReport, error) {
	rep, err := s.backend.ValidateDecomposition(ctx, runID)
	if err != nil {
		return backend.ValidationReport{}, fmt.Errorf("validating decomposition: %w", err)
	}
	return rep, nil
}
