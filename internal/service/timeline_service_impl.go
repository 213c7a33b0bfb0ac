package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/importer"
	"github.com/alexanderramin/reqplan/internal/timeline"
)

// localRunID names timelines built from a file without a run_id.
const localRunID = "local"

type timelineService struct {
	decompositions DecompositionService
	gantt          GanttBackend
}

func NewTimelineService(decompositions DecompositionService, gantt GanttBackend) TimelineService {
	return &timelineService{decompositions: decompositions, gantt: gantt}
}

func (s *timelineService) ForRun(ctx context.Context, runID string, start time.Time) (timeline.Timeline, error) {
	loaded, err := s.decompositions.Load(ctx, runID, false)
	if err != nil {
		return timeline.Timeline{}, err
	}
	return timeline.Build(runID, loaded.Decomposition, timeline.StartOrNow(start)), nil
}

func (s *timelineService) FromFile(path string, start time.Time) (timeline.Timeline, error) {
	schema, err := importer.LoadFile(path)
	if err != nil {
		return timeline.Timeline{}, err
	}
	d := importer.Convert(schema)
	runID := d.RunID
	if runID == "" {
		runID = localRunID
	}
	return timeline.Build(runID, d, timeline.StartOrNow(start)), nil
}

func (s *timelineService) Generate(ctx context.Context, runID string, req backend.GanttRequest) (json.RawMessage, error) {
	if req.TeamSize <= 0 {
		return nil, fmt.Errorf("team size must be positive, got %d", req.TeamSize)
	}
	chart, err := s.gantt.GenerateGantt(ctx, runID, req)
	if err != nil {
		return nil, fmt.Errorf("generating gantt chart: %w", err)
	}
	return chart, nil
}
