// Package progress folds the decomposition progress stream into one state
// for display.
package progress

import "slices"

// State is the accumulated view of a decomposition in flight.
type State struct {
	InFlight     bool
	Last         *Event
	CurrentChunk int
	TotalChunks  int
	EpicsCount   int
	TotalHours   float64
	Warnings     []string
	WasRepaired  bool
	Err          string
}

// Done reports whether a terminal event has been applied.
func (s State) Done() bool {
	return s.Last != nil && s.Last.IsTerminal()
}

// Accumulator merges events in arrival order. It does not reorder,
// deduplicate or retry. It is not safe for concurrent use.
type Accumulator struct {
	state State
}

// Reset returns the accumulator to its initial empty state.
func (a *Accumulator) Reset() {
	a.state = State{}
}

// Start resets and marks a new operation in flight.
func (a *Accumulator) Start() {
	a.state = State{InFlight: true}
}

// State returns a copy of the current state.
func (a *Accumulator) State() State {
	s := a.state
	if s.Warnings != nil {
		s.Warnings = slices.Clone(s.Warnings)
	}
	return s
}

// Apply merges e into the state and returns the result. Counters are last
// write wins when present, warnings are replaced wholesale when provided and
// the repaired flag stays true once set.
func (a *Accumulator) Apply(e Event) State {
	s := &a.state
	ev := e
	s.Last = &ev

	if e.ChunkIndex != nil {
		s.CurrentChunk = *e.ChunkIndex
	}
	if e.TotalChunks != nil {
		s.TotalChunks = *e.TotalChunks
	}
	if e.EpicsCount != nil {
		s.EpicsCount = *e.EpicsCount
	}
	if e.TotalHours != nil {
		s.TotalHours = *e.TotalHours
	}
	if e.Warnings != nil {
		s.Warnings = slices.Clone(e.Warnings)
	}
	if e.WasRepaired != nil && *e.WasRepaired {
		s.WasRepaired = true
	}

	switch e.Type {
	case EventComplete:
		s.InFlight = false
	case EventError:
		s.InFlight = false
		s.Err = e.Describe()
		if s.Err == "" {
			s.Err = "unknown error"
		}
	}

	return a.State()
}

// Fail records a transport-level failure as a terminal error event.
func (a *Accumulator) Fail(msg string) State {
	return a.Apply(Event{Type: EventError, Error: msg})
}
