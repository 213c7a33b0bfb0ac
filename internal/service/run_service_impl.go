package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/reqplan/internal/db"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/repository"
	"github.com/alexanderramin/reqplan/internal/runstore"
)

type runService struct {
	backend  RunsBackend
	store    *runstore.Store
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewRunService builds the run use cases. A nil uow makes Forget update
// only the store.
func NewRunService(b RunsBackend, store *runstore.Store, uow db.UnitOfWork, observers ...UseCaseObserver) RunService {
	return &runService{
		backend:  b,
		store:    store,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *runService) Refresh(ctx context.Context, limit int) (runs []domain.Run, err error) {
	fields := map[string]any{"limit": limit}
	defer track(ctx, s.observer, "refresh-runs", fields)(&err)

	runs, err = s.backend.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	fields["count"] = len(runs)

	if err = s.store.SetRuns(ctx, runs); err != nil {
		return nil, err
	}
	if sel := s.store.Selected(); sel != nil {
		for _, r := range runs {
			if r.ID == sel.ID {
				if err = s.store.UpdateRun(ctx, r.ID, domain.PatchFromRun(r)); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return runs, nil
}

func (s *runService) Cached() []domain.Run {
	return s.store.Runs()
}

func (s *runService) Show(ctx context.Context, runID string) (domain.Run, error) {
	run, err := s.backend.GetRun(ctx, runID)
	if err != nil {
		return domain.Run{}, fmt.Errorf("fetching run %s: %w", runID, err)
	}
	if run.ID == "" {
		run.ID = runID
	}
	if err := s.merge(ctx, run); err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

// merge updates a cached run in place or caches it as the newest.
func (s *runService) merge(ctx context.Context, run domain.Run) error {
	if _, ok := s.store.Run(run.ID); ok {
		return s.store.UpdateRun(ctx, run.ID, domain.PatchFromRun(run))
	}
	return s.store.AddRun(ctx, run)
}

func (s *runService) Select(ctx context.Context, runID string) (domain.Run, error) {
	run, ok := s.store.Run(runID)
	if !ok {
		var err error
		if run, err = s.Show(ctx, runID); err != nil {
			return domain.Run{}, err
		}
	}
	if err := s.store.SelectRun(ctx, &run); err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

func (s *runService) Selected() *domain.Run {
	return s.store.Selected()
}

func (s *runService) Clear(ctx context.Context) error {
	return s.store.ClearRuns(ctx)
}

func (s *runService) Forget(ctx context.Context, runID string) (err error) {
	defer track(ctx, s.observer, "forget-run", map[string]any{"run_id": runID})(&err)

	if s.uow == nil {
		return s.store.RemoveRun(ctx, runID, nil)
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteDecompositionCacheRepo(tx).Delete(ctx, runID); err != nil {
			return err
		}
		return s.store.RemoveRun(ctx, runID, repository.NewSQLiteStateRepo(tx))
	})
}

func (s *runService) Resolve(ref string) (domain.Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		sel := s.store.Selected()
		if sel == nil {
			return domain.Run{}, ErrNoRunSelected
		}
		return *sel, nil
	}
	return ResolveRun(s.store.Runs(), ref)
}

// ResolveRun finds a run by full id or unique case-insensitive prefix.
func ResolveRun(runs []domain.Run, ref string) (domain.Run, error) {
	var matches []domain.Run
	lower := strings.ToLower(ref)
	for _, r := range runs {
		if r.ID == ref {
			return r, nil
		}
		if strings.HasPrefix(strings.ToLower(r.ID), lower) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Run{}, fmt.Errorf("%w: %q", ErrRunNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.DisplayID())
		}
		return domain.Run{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousRun, ref, strings.Join(ids, ", "))
	}
}
