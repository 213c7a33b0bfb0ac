package progress

import (
	"encoding/json"
	"fmt"
)

// EventType tags a progress event from the decomposition stream.
type EventType string

const (
	EventStatus        EventType = "status"
	EventProgress      EventType = "progress"
	EventChunkStart    EventType = "chunk_start"
	EventChunkComplete EventType = "chunk_complete"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
	EventEnd           EventType = "end"
)

// Event is one incremental update. Pointer fields are nil when the event
// did not carry them; a nil Warnings slice means "not provided".
type Event struct {
	Type           EventType       `json:"type"`
	Message        string          `json:"message,omitempty"`
	ChunksReceived *int            `json:"chunks_received,omitempty"`
	ResponseLength *int            `json:"response_length,omitempty"`
	ChunkIndex     *int            `json:"chunk_index,omitempty"`
	TotalChunks    *int            `json:"total_chunks,omitempty"`
	EpicsCount     *int            `json:"epics_count,omitempty"`
	TotalHours     *float64        `json:"total_hours,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	WasRepaired    *bool           `json:"was_repaired,omitempty"`
	Validation     json.RawMessage `json:"validation,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// IsTerminal reports whether no further events are expected after e.
func (e Event) IsTerminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// Describe returns the one-line status text shown while streaming.
func (e Event) Describe() string {
	switch e.Type {
	case EventProgress:
		return fmt.Sprintf("Processing... %d chunks received (%d chars)", deref(e.ChunksReceived), deref(e.ResponseLength))
	case EventChunkStart:
		return fmt.Sprintf("Processing chunk %d of %d...", deref(e.ChunkIndex), deref(e.TotalChunks))
	case EventChunkComplete:
		return fmt.Sprintf("Completed chunk %d (%d epics)...", deref(e.ChunkIndex), deref(e.EpicsCount))
	case EventError:
		if e.Error != "" {
			return e.Error
		}
		return e.Message
	default:
		return e.Message
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Int returns a pointer to v, for building events.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for building events.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building events.
func Bool(v bool) *bool { return &v }
