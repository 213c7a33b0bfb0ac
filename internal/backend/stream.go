package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/progress"
)

// maxEventSize bounds one line of a progress stream.
const maxEventSize = 4 << 20

// EventFunc receives progress events in arrival order.
type EventFunc func(progress.Event)

// DecomposeStreaming runs the decomposition and reports progress. When the
// backend streams (NDJSON or SSE) each event is forwarded; when it answers
// with a single JSON result, status, progress and complete events are
// synthesised from it. An error event ends the call with ErrStreamFailed.
func (c *Client) DecomposeStreaming(ctx context.Context, runID string, onEvent EventFunc) (DecomposeResult, error) {
	return c.decompose(ctx, "/api/v1/requirements/decompose_streaming/"+url.PathEscape(runID), "Starting decomposition...", onEvent)
}

// DecomposeEnhanced runs the decomposition with server-side validation
// and repair. Progress is reported the same way as DecomposeStreaming.
func (c *Client) DecomposeEnhanced(ctx context.Context, runID string, onEvent EventFunc) (DecomposeResult, error) {
	return c.decompose(ctx, "/api/v1/requirements/decompose_enhanced/"+url.PathEscape(runID), "Starting enhanced decomposition...", onEvent)
}

func (c *Client) decompose(ctx context.Context, path, startMsg string, onEvent EventFunc) (DecomposeResult, error) {
	if onEvent == nil {
		onEvent = func(progress.Event) {}
	}

	req, err := jsonRequest(http.MethodPost, path, nil)
	if err != nil {
		return DecomposeResult{}, err
	}
	req.long = true
	req.contentType = "application/json"

	resp, err := c.open(ctx, req)
	if err != nil {
		return DecomposeResult{}, err
	}
	defer resp.Close()

	if isStreamingType(resp.Header.Get("Content-Type")) {
		return readEventStream(resp.Body, onEvent)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DecomposeResult{}, fmt.Errorf("reading %s response: %w", path, err)
	}
	return synthesizeEvents(body, startMsg, onEvent)
}

func isStreamingType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/x-ndjson", "application/jsonl", "application/json-seq", "text/event-stream":
		return true
	}
	return false
}

// readEventStream decodes one JSON event per line. SSE framing is
// accepted: data lines are unwrapped and other fields skipped.
func readEventStream(r io.Reader, onEvent EventFunc) (DecomposeResult, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	var result DecomposeResult
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "\x1e")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if field, value, ok := strings.Cut(line, ":"); ok && isSSEField(field) {
			if field != "data" {
				continue
			}
			line = strings.TrimSpace(value)
		}
		if line == "[DONE]" {
			break
		}

		var ev progress.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return result, fmt.Errorf("decoding stream event: %w", err)
		}
		merge(&result, ev)
		onEvent(ev)

		switch ev.Type {
		case progress.EventComplete:
			return result, nil
		case progress.EventError:
			return result, fmt.Errorf("%w: %s", ErrStreamFailed, describeError(ev))
		case progress.EventEnd:
			return result, ErrStreamIncomplete
		}
	}
	if err := sc.Err(); err != nil {
		return result, fmt.Errorf("reading stream: %w", err)
	}
	return result, ErrStreamIncomplete
}

func isSSEField(name string) bool {
	switch name {
	case "data", "event", "id", "retry":
		return true
	}
	return false
}

func describeError(ev progress.Event) string {
	if msg := ev.Describe(); msg != "" {
		return msg
	}
	return "unknown error"
}

// merge folds the result-bearing fields of ev into r.
func merge(r *DecomposeResult, ev progress.Event) {
	if ev.EpicsCount != nil {
		r.EpicsCount = *ev.EpicsCount
	}
	if ev.TotalHours != nil {
		r.TotalHours = *ev.TotalHours
	}
	if ev.Warnings != nil {
		r.Warnings = ev.Warnings
	}
	if ev.WasRepaired != nil && *ev.WasRepaired {
		r.WasRepaired = true
	}
	if len(ev.Validation) > 0 {
		r.Validation = ev.Validation
	}
}

// resultWire keeps presence information so the synthesised complete event
// only carries fields the backend sent.
type resultWire struct {
	EpicsCount  *int            `json:"epics_count"`
	TotalHours  *float64        `json:"total_hours"`
	Warnings    []string        `json:"warnings"`
	WasRepaired *bool           `json:"was_repaired"`
	Validation  json.RawMessage `json:"validation"`
}

func synthesizeEvents(body []byte, startMsg string, onEvent EventFunc) (DecomposeResult, error) {
	var wire resultWire
	if err := json.Unmarshal(bytes.TrimSpace(body), &wire); err != nil {
		return DecomposeResult{}, fmt.Errorf("decoding decomposition result: %w", err)
	}

	onEvent(progress.Event{Type: progress.EventStatus, Message: startMsg})
	onEvent(progress.Event{
		Type:           progress.EventProgress,
		ChunksReceived: progress.Int(1),
		ResponseLength: progress.Int(len(body)),
	})

	done := progress.Event{
		Type:        progress.EventComplete,
		EpicsCount:  wire.EpicsCount,
		TotalHours:  wire.TotalHours,
		Warnings:    wire.Warnings,
		WasRepaired: wire.WasRepaired,
		Validation:  wire.Validation,
	}
	var result DecomposeResult
	merge(&result, done)
	done.Message = CompletionMessage(result)
	onEvent(done)
	return result, nil
}

// CompletionMessage is the one-line summary of a finished decomposition.
func CompletionMessage(r DecomposeResult) string {
	msg := fmt.Sprintf("Decomposition completed with %d epics (%sh)", r.EpicsCount, domain.FormatHours(r.TotalHours))
	if r.WasRepaired {
		msg += " - Response was repaired due to truncation"
	}
	return msg
}
