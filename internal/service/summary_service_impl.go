package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/runstore"
)

type summaryService struct {
	backend RunsBackend
	store   *runstore.Store
}

func NewSummaryService(b RunsBackend, store *runstore.Store) SummaryService {
	return &summaryService{backend: b, store: store}
}

// Get serves the cached summary unless refresh is set.
func (s *summaryService) Get(ctx context.Context, runID string, refresh bool) (domain.DocumentSummary, error) {
	if !refresh {
		if sum, ok := s.store.Summary(runID); ok {
			return sum, nil
		}
	}
	sum, err := s.backend.GetSummary(ctx, runID)
	if err != nil {
		return domain.DocumentSummary{}, fmt.Errorf("fetching summary: %w", err)
	}
	if err := s.store.SetSummary(ctx, runID, sum); err != nil {
		return domain.DocumentSummary{}, err
	}
	return sum, nil
}
