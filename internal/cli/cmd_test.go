package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/logging"
	"github.com/alexanderramin/reqplan/internal/repository"
	"github.com/alexanderramin/reqplan/internal/runstore"
	"github.com/alexanderramin/reqplan/internal/service"
	"github.com/alexanderramin/reqplan/internal/testutil"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

// routes maps "METHOD /path" to a handler on the fake backend.
type routes map[string]http.HandlerFunc

// testApp wires a full App against an httptest backend and an in-memory
// DB. Requests to unknown routes fail the test.
func testApp(t *testing.T, r routes) (*App, *runstore.Store) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h, ok := r[req.Method+" "+req.URL.Path]
		if !ok && req.Method == http.MethodGet && req.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if !ok {
			t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, req)
	}))
	t.Cleanup(srv.Close)

	database := testutil.NewTestDB(t)
	logger := logging.Discard()
	store := runstore.New(repository.NewSQLiteStateRepo(database), logger)
	require.NoError(t, store.Load(context.Background()))

	cfg := backend.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	cfg.LongTimeout = 5 * time.Second
	cfg.MaxRetries = 0
	client := backend.New(cfg, nil)

	decompositions := service.NewDecompositionService(client, repository.NewSQLiteDecompositionCacheRepo(database), store, logger)
	return &App{
		Runs:           service.NewRunService(client, store, testutil.NewTestUoW(database)),
		Uploads:        service.NewUploadService(client, store, service.DefaultUploadOptions()),
		Summaries:      service.NewSummaryService(client, store),
		Decompositions: decompositions,
		Timelines:      service.NewTimelineService(decompositions, client),
		Assignments:    service.NewAssignmentService(client, decompositions),
		Sync:           service.NewSyncService(client, store),
		Backend:        client,
		Logger:         logger,
		MarkdownStyle:  "notty",
		Now:            func() time.Time { return fixedNow },
	}, store
}

// executeCmd runs the root command with args and returns plain output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return xansi.Strip(buf.String()), err
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func serveDecomposition(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, testutil.DecompositionJSON)
}

func seedRuns(t *testing.T, store *runstore.Store, runs ...domain.Run) {
	t.Helper()
	require.NoError(t, store.SetRuns(context.Background(), runs))
}

func TestRunsList_FetchesAndMarksSelected(t *testing.T) {
	var gotLimit string
	app, store := testApp(t, routes{
		"GET /api/v1/documents/runs": func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			respondJSON(w, map[string]any{"data": []domain.Run{
				testutil.NewTestRun("run-aaaaaaaa", testutil.WithFileName("spec.pdf")),
				testutil.NewTestRun("run-bbbbbbbb", testutil.WithFileName("brief.docx")),
			}})
		},
	})
	sel := testutil.NewTestRun("run-aaaaaaaa", testutil.WithFileName("spec.pdf"))
	require.NoError(t, store.SelectRun(context.Background(), &sel))

	out, err := executeCmd(t, app, "runs", "--limit", "5")
	require.NoError(t, err)

	assert.Equal(t, "5", gotLimit)
	assert.Contains(t, out, "spec.pdf")
	assert.Contains(t, out, "brief.docx")
	assert.Contains(t, out, "*")
	assert.Len(t, store.Runs(), 2)
}

func TestRunsList_OfflineUsesCache(t *testing.T) {
	app, store := testApp(t, routes{})
	seedRuns(t, store, testutil.NewTestRun("run-cached1", testutil.WithFileName("cached.pdf")))

	out, err := executeCmd(t, app, "runs", "list", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "cached.pdf")
}

func TestRunsList_Empty(t *testing.T) {
	app, _ := testApp(t, routes{})

	out, err := executeCmd(t, app, "runs", "list", "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs yet")
}

func TestRunsSelect_ByPrefix(t *testing.T) {
	app, store := testApp(t, routes{})
	seedRuns(t, store,
		testutil.NewTestRun("abc12345-0000", testutil.WithFileName("one.pdf")),
		testutil.NewTestRun("def67890-0000", testutil.WithFileName("two.pdf")),
	)

	out, err := executeCmd(t, app, "runs", "select", "abc1")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected run abc12345 (one.pdf)")

	sel := store.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "abc12345-0000", sel.ID)
}

func TestRunsSelect_UnknownFallsBackToBackend(t *testing.T) {
	app, store := testApp(t, routes{
		"GET /api/v1/documents/runs/remote-run": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, testutil.NewTestRun("remote-run", testutil.WithFileName("remote.pdf")))
		},
	})

	out, err := executeCmd(t, app, "runs", "select", "remote-run")
	require.NoError(t, err)
	assert.Contains(t, out, "remote.pdf")
	_, cached := store.Run("remote-run")
	assert.True(t, cached)
}

func TestRunsSelect_BackendErrorSurfaces(t *testing.T) {
	app, _ := testApp(t, routes{
		"GET /api/v1/documents/runs/remote-run": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})

	_, err := executeCmd(t, app, "runs", "select", "remote-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrServer)
	assert.NotErrorIs(t, err, service.ErrRunNotFound)
}

func TestRunsSelect_UnknownEverywhere(t *testing.T) {
	app, _ := testApp(t, routes{
		"GET /api/v1/documents/runs/missing": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	})

	_, err := executeCmd(t, app, "runs", "select", "missing")
	assert.ErrorIs(t, err, service.ErrRunNotFound)
}

func TestRunsForget(t *testing.T) {
	app, store := testApp(t, routes{})
	seedRuns(t, store, testutil.NewTestRun("run-forget1"))

	out, err := executeCmd(t, app, "runs", "forget", "run-forget1")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot run run-forg")
	assert.Empty(t, store.Runs())
}

func TestRunsClear(t *testing.T) {
	app, store := testApp(t, routes{})
	seedRuns(t, store, testutil.NewTestRun("run-1"), testutil.NewTestRun("run-2"))

	_, err := executeCmd(t, app, "runs", "clear")
	require.NoError(t, err)
	assert.Empty(t, store.Runs())
	assert.Nil(t, store.Selected())
}

func TestCommands_RequireSelection(t *testing.T) {
	app, _ := testApp(t, routes{})

	for _, args := range [][]string{{"summary"}, {"tree"}, {"timeline"}, {"sync"}} {
		_, err := executeCmd(t, app, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "no run selected", args)
	}
}

func TestSummary_FetchesThenServesCache(t *testing.T) {
	calls := 0
	app, store := testApp(t, routes{
		"GET /api/v1/documents/runs/run-1/summary": func(w http.ResponseWriter, r *http.Request) {
			calls++
			respondJSON(w, domain.DocumentSummary{
				ProjectName: "Storefront",
				Objectives:  []string{"Sell things online"},
			})
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "summary", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Storefront")
	assert.Contains(t, out, "Sell things online")

	_, err = executeCmd(t, app, "summary", "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = executeCmd(t, app, "summary", "run-1", "--refresh")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTree_RendersAndCaches(t *testing.T) {
	calls := 0
	app, store := testApp(t, routes{
		"GET /api/v1/requirements/decomposition_raw/run-1": func(w http.ResponseWriter, r *http.Request) {
			calls++
			serveDecomposition(w, r)
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))
	require.NoError(t, store.SelectRun(context.Background(), &domain.Run{ID: "run-1"}))

	out, err := executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "2 epics · 4 stories · 2 subtasks")
	assert.Contains(t, out, "Accounts")
	assert.Contains(t, out, "Checkout")
	assert.Contains(t, out, "Email check")

	out, err = executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "cached")
	assert.Equal(t, 1, calls)
}

func TestTree_RawPrintsIndentedJSON(t *testing.T) {
	app, store := testApp(t, routes{
		"GET /api/v1/requirements/decomposition_raw/run-1": serveDecomposition,
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "tree", "run-1", "--raw")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, `"run_id": "run-fixture"`)
}

func TestTimeline_ForRun(t *testing.T) {
	app, store := testApp(t, routes{
		"GET /api/v1/requirements/decomposition_raw/run-1": serveDecomposition,
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	// 2025-06-02 is a Monday.
	out, err := executeCmd(t, app, "timeline", "run-1", "--start", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "TIMELINE")
	assert.Contains(t, out, "Mon Jun 02 2025")
	assert.Contains(t, out, "Epics")
	assert.Contains(t, out, "Stories")
	assert.Contains(t, out, "Accounts (12h)")
}

func TestTimeline_FromFile(t *testing.T) {
	app, _ := testApp(t, routes{})
	path := filepath.Join(t.TempDir(), "decomposition.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.DecompositionJSON), 0o600))

	out, err := executeCmd(t, app, "timeline", "--file", path, "--start", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "Checkout")
}

func TestTimeline_RejectsBadStart(t *testing.T) {
	app, _ := testApp(t, routes{})

	_, err := executeCmd(t, app, "timeline", "--file", "x.json", "--start", "06/02/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
}

func TestTimeline_ServerSendsTeamSize(t *testing.T) {
	var got backend.GanttRequest
	app, store := testApp(t, routes{
		"POST /api/v1/gantt/generate/run-1": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			respondJSON(w, map[string]any{"tasks": []any{}})
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "timeline", "run-1", "--server", "--team-size", "3", "--start", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 3, got.TeamSize)
	assert.Equal(t, "2025-06-02", got.StartDate)
	assert.Contains(t, out, `"tasks"`)
}

func streamHandler(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, l := range lines {
			_, _ = io.WriteString(w, l+"\n")
		}
	}
}

func TestDecompose_PlainStream(t *testing.T) {
	app, store := testApp(t, routes{
		"POST /api/v1/requirements/decompose_streaming/run-1": streamHandler(
			`{"type":"status","message":"Starting decomposition..."}`,
			`{"type":"chunk_start","chunk_index":1,"total_chunks":2}`,
			`{"type":"complete","epics_count":2,"total_hours":30,"warnings":["Story S4 has no subtasks"]}`,
		),
		"GET /api/v1/documents/runs": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, map[string]any{"data": []domain.Run{
				testutil.NewTestRun("run-1", testutil.WithDecompositionStatus(domain.StepCompleted)),
			}})
		},
		"GET /api/v1/requirements/decomposition_raw/run-1": serveDecomposition,
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "decompose", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Starting decomposition...")
	assert.Contains(t, out, "Processing chunk 1 of 2...")
	assert.Contains(t, out, "warning: Story S4 has no subtasks")

	run, ok := store.Run("run-1")
	require.True(t, ok)
	assert.Equal(t, domain.StepCompleted, run.Steps.Decomposition.Status)
}

func TestDecompose_ErrorEvent(t *testing.T) {
	app, store := testApp(t, routes{
		"POST /api/v1/requirements/decompose_streaming/run-1": streamHandler(
			`{"type":"status","message":"Starting decomposition..."}`,
			`{"type":"error","error":"model overloaded"}`,
		),
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "decompose", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decomposition failed")
	assert.Contains(t, err.Error(), "model overloaded")
	assert.NotContains(t, out, "model overloaded")
}

func TestDecompose_FlagsConflict(t *testing.T) {
	app, _ := testApp(t, routes{})

	_, err := executeCmd(t, app, "decompose", "run-1", "--enhanced", "--trigger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestValidate_ReportsErrors(t *testing.T) {
	app, store := testApp(t, routes{
		"GET /api/v1/requirements/decomposition_validation/run-1": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, backend.ValidationReport{IsValid: false, Errors: []string{"epic E2 has no estimate"}})
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "decompose", "validate", "run-1")
	require.Error(t, err)
	assert.Contains(t, out, "epic E2 has no estimate")
}

func TestUsers(t *testing.T) {
	app, _ := testApp(t, routes{
		"GET /api/v1/jira/users": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, map[string]any{"users": testutil.NewTestUsers()})
		},
	})

	out, err := executeCmd(t, app, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "acc-alan")
}

// assignmentRoutes serves the fixture decomposition and users, no saved
// assignments, and records what is saved.
func assignmentRoutes(saved *domain.FinalAssignments, mu *sync.Mutex) routes {
	return routes{
		"GET /api/v1/requirements/decomposition_raw/run-1": serveDecomposition,
		"GET /api/v1/jira/users": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, map[string]any{"users": testutil.NewTestUsers()})
		},
		"GET /api/v1/assignments/final/run-1": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"GET /api/v1/assignments/suggestions/run-1": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, map[string]any{"suggestions": map[string]string{"E1": "acc-alan"}})
		},
		"POST /api/v1/assignments/final/run-1": func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			defer mu.Unlock()
			_ = json.NewDecoder(r.Body).Decode(saved)
			respondJSON(w, map[string]any{"status": "ok"})
		},
	}
}

func TestAssignEdit_SetFlags(t *testing.T) {
	var saved domain.FinalAssignments
	var mu sync.Mutex
	app, store := testApp(t, assignmentRoutes(&saved, &mu))
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "assign", "edit", "run-1", "--set", "S1=acc-ada")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	mu.Lock()
	defer mu.Unlock()
	flat := saved.Flatten()
	assert.Equal(t, "acc-ada", flat["S1"])
	assert.Equal(t, "acc-alan", flat["E1"], "stored suggestions are the starting point")
}

func TestAssignEdit_RejectsUnknownIDs(t *testing.T) {
	var saved domain.FinalAssignments
	var mu sync.Mutex
	app, store := testApp(t, assignmentRoutes(&saved, &mu))
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	_, err := executeCmd(t, app, "assign", "edit", "run-1", "--set", "NOPE=acc-ada", "--set", "S1=acc-nobody")
	require.Error(t, err)
	assert.Equal(t, "unknown task NOPE, user acc-nobody", err.Error())
}

func TestAssignEdit_NeedsTerminalOrSets(t *testing.T) {
	var saved domain.FinalAssignments
	var mu sync.Mutex
	app, store := testApp(t, assignmentRoutes(&saved, &mu))
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	_, err := executeCmd(t, app, "assign", "edit", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--set")
}

func TestAssignShow_NothingSaved(t *testing.T) {
	var saved domain.FinalAssignments
	var mu sync.Mutex
	app, store := testApp(t, assignmentRoutes(&saved, &mu))
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "assign", "show", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "No assignments saved yet")
}

func finalFixture() domain.FinalAssignments {
	return domain.FinalAssignments{
		RunID: "run-1",
		Epics: []domain.AssignedEpic{{
			AssignedItem: domain.AssignedItem{ID: "E1", Title: "Accounts", Assignee: "acc-ada", AssigneeName: "Ada Lovelace"},
			Stories: []domain.AssignedStory{{
				AssignedItem: domain.AssignedItem{ID: "S1", Title: "Sign up", Assignee: "acc-alan", AssigneeName: "Alan Turing"},
			}},
		}},
	}
}

func TestSync_ReportsFailures(t *testing.T) {
	var sent map[string]map[string]string
	app, store := testApp(t, routes{
		"GET /api/v1/assignments/final/run-1": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, finalFixture())
		},
		"POST /api/v1/jira-sync/sync/run-1": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&sent)
			respondJSON(w, domain.SyncResult{SyncStatus: map[string]domain.SyncStatus{
				"E1": domain.SyncSuccess,
				"S1": domain.SyncError,
			}})
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "sync", "run-1")
	require.Error(t, err)
	assert.Equal(t, "1 tickets failed to sync", err.Error())
	assert.Equal(t, map[string]string{"E1": "acc-ada", "S1": "acc-alan"}, sent["assignments"])
	assert.Contains(t, out, "1 tickets created, 1 failed.")
	assert.Contains(t, out, "● SUCCESS")
	assert.Contains(t, out, "● ERROR")

	run, _ := store.Run("run-1")
	assert.Equal(t, domain.StepCompleted, run.Steps.JiraSync.Status, "a partial failure still completes the step")
}

func TestSync_StatusMarksStepCompleted(t *testing.T) {
	app, store := testApp(t, routes{
		"GET /api/v1/jira-sync/sync/run-1": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, domain.SyncResult{SyncStatus: map[string]domain.SyncStatus{"E1": domain.SyncSuccess}})
		},
	})
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	out, err := executeCmd(t, app, "sync", "run-1", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "All 1 tickets created successfully!")

	run, _ := store.Run("run-1")
	assert.Equal(t, domain.StepCompleted, run.Steps.JiraSync.Status)
}

func TestUpload_RejectsUnsupportedFile(t *testing.T) {
	app, _ := testApp(t, routes{})
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err := executeCmd(t, app, "upload", path)
	require.ErrorIs(t, err, service.ErrUnsupportedFile)
}

func TestUpload_CachesAndSelectsRun(t *testing.T) {
	app, store := testApp(t, routes{
		"POST /api/v1/documents/upload": func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, backend.UploadResponse{DocumentID: "doc-12345678", FileName: "spec.pdf"})
		},
	})
	path := filepath.Join(t.TempDir(), "spec.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	out, err := executeCmd(t, app, "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded spec.pdf as run doc-12345678")

	sel := store.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "doc-12345678", sel.ID)
}

func downBackend() *backend.Client {
	cfg := backend.DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	return backend.New(cfg, nil)
}

func TestUpload_BackendDown(t *testing.T) {
	app, store := testApp(t, routes{})
	app.Backend = downBackend()
	path := filepath.Join(t.TempDir(), "spec.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	_, err := executeCmd(t, app, "upload", path)
	require.ErrorIs(t, err, backend.ErrUnavailable)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Empty(t, store.Runs())
}

func TestDecompose_BackendDown(t *testing.T) {
	app, store := testApp(t, routes{})
	app.Backend = downBackend()
	seedRuns(t, store, testutil.NewTestRun("run-1"))

	_, err := executeCmd(t, app, "decompose", "run-1")
	require.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestSetupRunsBeforeCommands(t *testing.T) {
	app, _ := testApp(t, routes{})
	var gotURL string
	v := viper.New()
	app.Setup = func(_ *cobra.Command, flags *pflag.FlagSet) error {
		if err := BindGlobalFlags(v, flags); err != nil {
			return err
		}
		gotURL = v.GetString("api.base_url")
		return nil
	}

	_, err := executeCmd(t, app, "--api-url", "http://planner.internal:9000", "runs", "list", "--offline")
	require.NoError(t, err)
	assert.Equal(t, "http://planner.internal:9000", gotURL)
}

func TestBindGlobalFlags_UnsetFlagsKeepConfig(t *testing.T) {
	v := viper.New()
	v.SetDefault("logging.level", "warn")
	root := NewRootCmd(&App{})
	require.NoError(t, root.PersistentFlags().Parse([]string{"--db", "/tmp/x.db"}))
	require.NoError(t, BindGlobalFlags(v, root.PersistentFlags()))

	assert.Equal(t, "warn", v.GetString("logging.level"))
	assert.Equal(t, "/tmp/x.db", v.GetString("storage.db_path"))
	assert.Empty(t, ConfigFile(root.PersistentFlags()))
}
