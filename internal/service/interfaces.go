package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/alexanderramin/reqplan/internal/timeline"
)

// The backend collaborators below are satisfied by *backend.Client.

type RunsBackend interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (backend.UploadResponse, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	GetRun(ctx context.Context, runID string) (domain.Run, error)
	GetSummary(ctx context.Context, runID string) (domain.DocumentSummary, error)
}

type DecompositionBackend interface {
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	TriggerDecomposition(ctx context.Context, runID string) error
	GetDecompositionRaw(ctx context.Context, runID string) ([]byte, error)
	DecomposeStreaming(ctx context.Context, runID string, onEvent backend.EventFunc) (backend.DecomposeResult, error)
	DecomposeEnhanced(ctx context.Context, runID string, onEvent backend.EventFunc) (backend.DecomposeResult, error)
	ValidateDecomposition(ctx context.Context, runID string) (backend.ValidationReport, error)
}

type GanttBackend interface {
	GenerateGantt(ctx context.Context, runID string, req backend.GanttRequest) (json.RawMessage, error)
	GetGantt(ctx context.Context, runID string) (json.RawMessage, error)
}

type AssignmentBackend interface {
	ListUsers(ctx context.Context, refresh bool) ([]domain.User, error)
	SuggestAssignees(ctx context.Context, runID string, users []domain.User, tasks []domain.AssignmentTask) (domain.Assignments, error)
	GetSuggestions(ctx context.Context, runID string) (domain.Assignments, error)
	GetFinalAssignments(ctx context.Context, runID string) (domain.FinalAssignments, error)
	SaveFinalAssignments(ctx context.Context, runID string, fa domain.FinalAssignments) error
}

type SyncBackend interface {
	GetFinalAssignments(ctx context.Context, runID string) (domain.FinalAssignments, error)
	Sync(ctx context.Context, runID string, assignments domain.Assignments) (domain.SyncResult, error)
	GetSyncResult(ctx context.Context, runID string) (domain.SyncResult, error)
}

type RunService interface {
	// Refresh fetches recent runs and replaces the cached list.
	Refresh(ctx context.Context, limit int) ([]domain.Run, error)
	Cached() []domain.Run
	// Show fetches one run and merges it into the cache.
	Show(ctx context.Context, runID string) (domain.Run, error)
	Select(ctx context.Context, runID string) (domain.Run, error)
	Selected() *domain.Run
	Clear(ctx context.Context) error
	// Forget drops the run and its cached decomposition.
	Forget(ctx context.Context, runID string) error
	// Resolve maps a full id or unique prefix to a cached run. An empty
	// ref means the selected run.
	Resolve(ref string) (domain.Run, error)
}

type UploadService interface {
	// Upload validates and sends a local document, then caches and
	// selects the new run.
	Upload(ctx context.Context, path string) (domain.Run, error)
	// WaitForSummary polls the run until its summary step settles or the
	// attempt budget runs out.
	WaitForSummary(ctx context.Context, runID string, onPoll PollFunc) (domain.Run, error)
}

// PollFunc observes each summary poll. err is the poll's fetch error.
type PollFunc func(attempt int, run domain.Run, err error)

type SummaryService interface {
	Get(ctx context.Context, runID string, refresh bool) (domain.DocumentSummary, error)
}

type DecompositionService interface {
	// Trigger starts server-side decomposition and loads the result.
	Trigger(ctx context.Context, runID string) (*Loaded, error)
	// Stream runs a decomposition, reporting accumulated progress after
	// every event. The final state is returned even on failure.
	Stream(ctx context.Context, runID string, mode StreamMode, onState func(progress.State)) (progress.State, error)
	Validate(ctx context.Context, runID string) (backend.ValidationReport, error)
	// Load returns the run's decomposition through the local cache.
	Load(ctx context.Context, runID string, refresh bool) (*Loaded, error)
	LoadRaw(ctx context.Context, runID string, refresh bool) ([]byte, error)
}

type TimelineService interface {
	ForRun(ctx context.Context, runID string, start time.Time) (timeline.Timeline, error)
	FromFile(path string, start time.Time) (timeline.Timeline, error)
	// Generate asks the backend to schedule the run with a team size and
	// returns its chart.
	Generate(ctx context.Context, runID string, req backend.GanttRequest) (json.RawMessage, error)
}

type AssignmentService interface {
	Users(ctx context.Context, refresh bool) ([]domain.User, error)
	Tasks(ctx context.Context, runID string) ([]domain.AssignmentTask, error)
	Suggest(ctx context.Context, runID string) (domain.Assignments, error)
	// Saved returns stored suggestions; none yet is an empty map.
	Saved(ctx context.Context, runID string) (domain.Assignments, error)
	Final(ctx context.Context, runID string) (domain.FinalAssignments, error)
	Save(ctx context.Context, runID string, assignments domain.Assignments) (domain.FinalAssignments, error)
}

type SyncService interface {
	Sync(ctx context.Context, runID string) (*SyncReport, error)
	Status(ctx context.Context, runID string) (*SyncReport, error)
}
