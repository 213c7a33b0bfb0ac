package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexanderramin/reqplan/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/requirements/decompose_streaming/run-1", r.URL.Path)
		w.Header().Set("Content-Type", contentType)
		fl, _ := w.(http.Flusher)
		for _, line := range strings.SplitAfter(body, "\n") {
			_, _ = w.Write([]byte(line))
			if fl != nil {
				fl.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(events *[]progress.Event) EventFunc {
	return func(e progress.Event) { *events = append(*events, e) }
}

func TestDecomposeStreaming_NDJSON(t *testing.T) {
	body := strings.Join([]string{
		`{"type":"status","message":"Starting"}`,
		`{"type":"chunk_start","chunk_index":1,"total_chunks":2}`,
		``,
		`{"type":"chunk_complete","chunk_index":1,"epics_count":2,"was_repaired":true}`,
		`{"type":"complete","epics_count":4,"total_hours":96,"warnings":["estimate missing"]}`,
		`{"type":"status","message":"ignored after complete"}`,
	}, "\n")
	srv := streamServer(t, "application/x-ndjson", body)

	var events []progress.Event
	res, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, progress.EventChunkStart, events[1].Type)
	assert.Equal(t, progress.EventComplete, events[3].Type)
	assert.Equal(t, 4, res.EpicsCount)
	assert.Equal(t, 96.0, res.TotalHours)
	assert.Equal(t, []string{"estimate missing"}, res.Warnings)
	assert.True(t, res.WasRepaired, "repair flag from an earlier chunk sticks")
}

func TestDecomposeStreaming_SSE(t *testing.T) {
	body := ": keepalive\n" +
		"event: progress\n" +
		"data: {\"type\":\"progress\",\"chunks_received\":3,\"response_length\":900}\n\n" +
		"id: 2\n" +
		"data: {\"type\":\"complete\",\"epics_count\":1,\"total_hours\":8}\n\n"
	srv := streamServer(t, "text/event-stream; charset=utf-8", body)

	var events []progress.Event
	res, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Processing... 3 chunks received (900 chars)", events[0].Describe())
	assert.Equal(t, 1, res.EpicsCount)
}

func TestDecomposeStreaming_ErrorEvent(t *testing.T) {
	body := `{"type":"status","message":"Starting"}` + "\n" + `{"type":"error","error":"model overloaded"}` + "\n"
	srv := streamServer(t, "application/x-ndjson", body)

	var events []progress.Event
	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.ErrorIs(t, err, ErrStreamFailed)
	assert.Contains(t, err.Error(), "model overloaded")
	require.Len(t, events, 2)
	assert.True(t, events[1].IsTerminal())
}

func TestDecomposeStreaming_EndsEarly(t *testing.T) {
	srv := streamServer(t, "application/x-ndjson", `{"type":"chunk_start","chunk_index":1,"total_chunks":3}`+"\n")

	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", nil)
	assert.ErrorIs(t, err, ErrStreamIncomplete)
}

func TestDecomposeStreaming_EndEventWithoutComplete(t *testing.T) {
	srv := streamServer(t, "application/x-ndjson", `{"type":"end"}`+"\n"+`{"type":"complete"}`+"\n")

	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", nil)
	assert.ErrorIs(t, err, ErrStreamIncomplete)
}

func TestDecomposeStreaming_BadLine(t *testing.T) {
	srv := streamServer(t, "application/x-ndjson", "not json\n")

	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding stream event")
}

func TestDecomposeStreaming_JSONFallbackSynthesisesEvents(t *testing.T) {
	body := `{"epics_count":3,"total_hours":42.5,"warnings":["w1"],"was_repaired":true}`
	srv := streamServer(t, "application/json", body)

	var events []progress.Event
	res, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, progress.Event{Type: progress.EventStatus, Message: "Starting decomposition..."}, events[0])
	assert.Equal(t, progress.EventProgress, events[1].Type)
	assert.Equal(t, 1, *events[1].ChunksReceived)
	assert.Equal(t, len(body), *events[1].ResponseLength)
	assert.Equal(t, progress.EventComplete, events[2].Type)
	assert.Equal(t, "Decomposition completed with 3 epics (42.5h) - Response was repaired due to truncation", events[2].Message)

	assert.Equal(t, DecomposeResult{EpicsCount: 3, TotalHours: 42.5, Warnings: []string{"w1"}, WasRepaired: true}, res)

	var acc progress.Accumulator
	acc.Start()
	for _, e := range events {
		acc.Apply(e)
	}
	st := acc.State()
	assert.False(t, st.InFlight)
	assert.Equal(t, 3, st.EpicsCount)
	assert.Equal(t, 42.5, st.TotalHours)
}

func TestDecomposeStreaming_FallbackKeepsAbsentFieldsAbsent(t *testing.T) {
	srv := streamServer(t, "application/json", `{"status":"ok"}`)

	var events []progress.Event
	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.NoError(t, err)
	done := events[len(events)-1]
	assert.Nil(t, done.EpicsCount)
	assert.Nil(t, done.TotalHours)
	assert.Nil(t, done.Warnings)
}

func TestDecomposeStreaming_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no summary yet", http.StatusConflict)
	}))
	defer srv.Close()

	var events []progress.Event
	_, err := New(testConfig(srv.URL), nil).DecomposeStreaming(context.Background(), "run-1", collect(&events))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no summary yet")
	assert.Empty(t, events)
}

func TestDecomposeEnhanced_StartMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/requirements/decompose_enhanced/run-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"epics_count":2,"total_hours":10}`)
	}))
	defer srv.Close()

	var events []progress.Event
	res, err := New(testConfig(srv.URL), nil).DecomposeEnhanced(context.Background(), "run-1", collect(&events))
	require.NoError(t, err)
	assert.Equal(t, "Starting enhanced decomposition...", events[0].Message)
	assert.Equal(t, "Decomposition completed with 2 epics (10h)", CompletionMessage(res))
}
