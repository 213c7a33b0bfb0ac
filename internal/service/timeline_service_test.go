package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/reqplan/internal/backend"
	"github.com/alexanderramin/reqplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestTimelineService_ForRun(t *testing.T) {
	fb, store, cache, _ := setup(t)
	svc := NewTimelineService(NewDecompositionService(fb, cache, store, nil), fb)

	tl, err := svc.ForRun(context.Background(), "run-1", monday)
	require.NoError(t, err)
	require.Len(t, tl.Project, 1)
	assert.Equal(t, "RUN-run-1", tl.Project[0].ID)
	assert.Equal(t, monday, tl.Project[0].Start)
	require.Len(t, tl.Epics, 2)
	assert.Equal(t, "E1", tl.Epics[0].ID)
	assert.Equal(t, tl.Epics[0].End, tl.Epics[1].Start)
	assert.Len(t, tl.Stories, 4)
}

func TestTimelineService_FromFile(t *testing.T) {
	svc := NewTimelineService(nil, nil)
	path := filepath.Join(t.TempDir(), "decomposition.json")
	require.NoError(t, os.WriteFile(path, []byte(testutil.DecompositionJSON), 0o644))

	tl, err := svc.FromFile(path, monday)
	require.NoError(t, err)
	assert.Equal(t, "RUN-run-fixture", tl.Project[0].ID)
	assert.Equal(t, "Project Timeline (30h)", tl.Project[0].Name)

	noID := filepath.Join(t.TempDir(), "bare.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"epics":[{"title":"Solo","estimated_hours":8}]}`), 0o644))
	tl, err = svc.FromFile(noID, monday)
	require.NoError(t, err)
	assert.Equal(t, "RUN-local", tl.Project[0].ID)
	assert.Equal(t, "EPIC-1", tl.Epics[0].ID)

	_, err = svc.FromFile(filepath.Join(t.TempDir(), "missing.json"), monday)
	assert.Error(t, err)
}

func TestTimelineService_Generate(t *testing.T) {
	fb := newFakeBackend()
	fb.gantt = json.RawMessage(`{"tasks":[]}`)
	svc := NewTimelineService(nil, fb)

	chart, err := svc.Generate(context.Background(), "run-1", backend.GanttRequest{StartDate: "2025-06-02", TeamSize: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, string(chart))
	assert.Equal(t, 4, fb.ganttReq.TeamSize)

	_, err = svc.Generate(context.Background(), "run-1", backend.GanttRequest{TeamSize: 0})
	assert.Error(t, err)
}
