package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/runstore"
)

type syncService struct {
	backend  SyncBackend
	store    *runstore.Store
	observer UseCaseObserver
	now      func() time.Time
}

func NewSyncService(b SyncBackend, store *runstore.Store, observers ...UseCaseObserver) SyncService {
	return &syncService{
		backend:  b,
		store:    store,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *syncService) Sync(ctx context.Context, runID string) (report *SyncReport, err error) {
	fields := map[string]any{"run_id": runID}
	defer track(ctx, s.observer, "sync-tickets", fields)(&err)

	fa, err := s.backend.GetFinalAssignments(ctx, runID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrNoAssignments
	}
	if err != nil {
		return nil, fmt.Errorf("loading final assignments: %w", err)
	}
	flat := fa.Flatten()
	if len(flat) == 0 {
		return nil, ErrNoAssignments
	}

	result, err := s.backend.Sync(ctx, runID, flat)
	if err != nil {
		return nil, fmt.Errorf("syncing tickets: %w", err)
	}

	report = newSyncReport(runID, result)
	report.Assignments = fa
	fields["success"] = report.Success
	fields["failed"] = report.Failed

	status := domain.StepCompleted
	if result.AllFailed() {
		status = domain.StepFailed
	}
	if err = s.setSyncStep(ctx, runID, status); err != nil {
		return nil, err
	}
	report.StepStatus = status
	return report, nil
}

func (s *syncService) Status(ctx context.Context, runID string) (*SyncReport, error) {
	result, err := s.backend.GetSyncResult(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading sync status: %w", err)
	}
	report := newSyncReport(runID, result)

	run, cached := s.store.Run(runID)
	if len(result.SyncStatus) > 0 && !result.HasErrors() && cached && run.Steps.JiraSync.Status != domain.StepCompleted {
		if err := s.setSyncStep(ctx, runID, domain.StepCompleted); err != nil {
			return nil, err
		}
		report.StepStatus = domain.StepCompleted
	}
	return report, nil
}

// setSyncStep marks the jira_sync step on a cached run. Uncached runs are
// left alone.
func (s *syncService) setSyncStep(ctx context.Context, runID string, status domain.StepStatus) error {
	run, ok := s.store.Run(runID)
	if !ok {
		return nil
	}
	steps := run.Steps
	steps.JiraSync = domain.NewStep(status, s.now())
	return s.store.UpdateRun(ctx, runID, domain.RunPatch{Steps: &steps})
}

func newSyncReport(runID string, result domain.SyncResult) *SyncReport {
	success, failed := result.Counts()
	return &SyncReport{RunID: runID, Result: result, Success: success, Failed: failed}
}
