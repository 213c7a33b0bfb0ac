package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/alexanderramin/reqplan/internal/repository"
	"github.com/alexanderramin/reqplan/internal/runstore"
	"github.com/alexanderramin/reqplan/internal/testutil"
)

// fakeBackend implements every backend collaborator with canned data.
type fakeBackend struct {
	mu sync.Mutex

	runs       map[string]domain.Run
	runQueue   []domain.Run
	runErrs    []error
	listed     []domain.Run
	summaries  map[string]domain.DocumentSummary
	uploadResp backend.UploadResponse
	uploaded   []byte

	decomposition []byte
	decompCalls   int
	triggered     []string
	streamEvents  []progress.Event
	streamErr     error
	enhancedCalls int
	validation    backend.ValidationReport

	gantt    json.RawMessage
	ganttReq backend.GanttRequest

	users       []domain.User
	suggestions domain.Assignments
	suggestErr  error
	suggestReq  []domain.AssignmentTask
	final       *domain.FinalAssignments
	syncResult  domain.SyncResult
	synced      domain.Assignments

	getRunCalls int
	err         error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		runs:          map[string]domain.Run{},
		summaries:     map[string]domain.DocumentSummary{},
		decomposition: []byte(testutil.DecompositionJSON),
		users:         testutil.NewTestUsers(),
	}
}

func (f *fakeBackend) Upload(_ context.Context, fileName string, content io.Reader) (backend.UploadResponse, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return backend.UploadResponse{}, err
	}
	f.uploaded = data
	if f.err != nil {
		return backend.UploadResponse{}, f.err
	}
	resp := f.uploadResp
	if resp.FileName == "" {
		resp.FileName = fileName
	}
	return resp, nil
}

func (f *fakeBackend) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.listed) {
		return f.listed[:limit], nil
	}
	return f.listed, nil
}

func (f *fakeBackend) GetRun(_ context.Context, runID string) (domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getRunCalls++
	if len(f.runErrs) > 0 {
		err := f.runErrs[0]
		f.runErrs = f.runErrs[1:]
		if err != nil {
			return domain.Run{}, err
		}
	}
	if len(f.runQueue) > 0 {
		r := f.runQueue[0]
		f.runQueue = f.runQueue[1:]
		return r, nil
	}
	r, ok := f.runs[runID]
	if !ok {
		return domain.Run{}, &backend.APIError{Status: 404, Message: "Run not found"}
	}
	return r, nil
}

func (f *fakeBackend) GetSummary(_ context.Context, runID string) (domain.DocumentSummary, error) {
	sum, ok := f.summaries[runID]
	if !ok {
		return domain.DocumentSummary{}, &backend.APIError{Status: 404, Message: "Summary not found"}
	}
	return sum, nil
}

func (f *fakeBackend) TriggerDecomposition(_ context.Context, runID string) error {
	f.triggered = append(f.triggered, runID)
	return f.err
}

func (f *fakeBackend) GetDecompositionRaw(context.Context, string) ([]byte, error) {
	f.decompCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.decomposition, nil
}

func (f *fakeBackend) DecomposeStreaming(_ context.Context, _ string, onEvent backend.EventFunc) (backend.DecomposeResult, error) {
	for _, e := range f.streamEvents {
		onEvent(e)
	}
	return backend.DecomposeResult{}, f.streamErr
}

func (f *fakeBackend) DecomposeEnhanced(ctx context.Context, runID string, onEvent backend.EventFunc) (backend.DecomposeResult, error) {
	f.enhancedCalls++
	return f.DecomposeStreaming(ctx, runID, onEvent)
}

func (f *fakeBackend) ValidateDecomposition(context.Context, string) (backend.ValidationReport, error) {
	return f.validation, f.err
}

func (f *fakeBackend) GenerateGantt(_ context.Context, _ string, req backend.GanttRequest) (json.RawMessage, error) {
	f.ganttReq = req
	return f.gantt, f.err
}

func (f *fakeBackend) GetGantt(context.Context, string) (json.RawMessage, error) {
	return f.gantt, f.err
}

func (f *fakeBackend) ListUsers(context.Context, bool) ([]domain.User, error) {
	return f.users, f.err
}

func (f *fakeBackend) SuggestAssignees(_ context.Context, _ string, _ []domain.User, tasks []domain.AssignmentTask) (domain.Assignments, error) {
	f.suggestReq = tasks
	return f.suggestions, f.suggestErr
}

func (f *fakeBackend) GetSuggestions(context.Context, string) (domain.Assignments, error) {
	if f.suggestions == nil {
		return nil, &backend.APIError{Status: 404, Message: "No suggestions"}
	}
	return f.suggestions, nil
}

func (f *fakeBackend) GetFinalAssignments(context.Context, string) (domain.FinalAssignments, error) {
	if f.final == nil {
		return domain.FinalAssignments{}, &backend.APIError{Status: 404, Message: "No final assignments"}
	}
	return *f.final, nil
}

func (f *fakeBackend) SaveFinalAssignments(_ context.Context, _ string, fa domain.FinalAssignments) error {
	if f.err != nil {
		return f.err
	}
	f.final = &fa
	return nil
}

func (f *fakeBackend) Sync(_ context.Context, _ string, assignments domain.Assignments) (domain.SyncResult, error) {
	f.synced = assignments
	return f.syncResult, f.err
}

func (f *fakeBackend) GetSyncResult(context.Context, string) (domain.SyncResult, error) {
	return f.syncResult, f.err
}

// recordingObserver collects use case events.
type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func setup(t *testing.T) (*fakeBackend, *runstore.Store, *repository.SQLiteDecompositionCacheRepo, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := runstore.New(repository.NewSQLiteStateRepo(database), nil)
	return newFakeBackend(), store, repository.NewSQLiteDecompositionCacheRepo(database), database
}

var fixedNow = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }
