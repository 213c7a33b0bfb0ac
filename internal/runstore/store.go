// Package runstore is the local cache of runs, the selected run and
// document summaries. The whole state is persisted as one versioned blob
// after every mutation.
package runstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/alexanderramin/reqplan/internal/repository"
)

const (
	// Key is the kv_store key holding the blob.
	Key = "run-store"
	// Version is written into every persisted blob.
	Version = 1
)

// Persister is the blob storage the store writes through.
// repository.StateRepo satisfies it.
type Persister interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// State is the cached data.
type State struct {
	Runs        []domain.Run                      `json:"runs"`
	SelectedRun *domain.Run                       `json:"selectedRun"`
	Summaries   map[string]domain.DocumentSummary `json:"summaries"`
}

func emptyState() State {
	return State{Runs: []domain.Run{}, Summaries: map[string]domain.DocumentSummary{}}
}

type envelope struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// Store is safe for concurrent use. A nil persister keeps everything in
// memory.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	logger    *slog.Logger
}

func New(p Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{state: emptyState(), persister: p, logger: logger}
}

// Load replaces the in-memory state with the persisted blob. Corrupt or
// structurally invalid data is logged, deleted and replaced by the empty
// state; only storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = emptyState()
	if s.persister == nil {
		return nil
	}

	raw, err := s.persister.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("loading run store: %w", err)
	}

	st, err := decode(raw)
	if err != nil {
		s.logger.Warn("invalid run store data, clearing store", "error", err)
		if delErr := s.persister.Delete(ctx, Key); delErr != nil {
			return fmt.Errorf("clearing corrupted run store: %w", delErr)
		}
		return nil
	}
	s.state = st
	return nil
}

var requiredKeys = []string{"runs", "selectedRun", "summaries"}

// decode validates and normalises a persisted blob. A non-array runs value
// becomes empty, a falsy selectedRun becomes nil and a non-object summaries
// value becomes an empty map.
func decode(raw []byte) (State, error) {
	var env struct {
		State map[string]json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return State{}, fmt.Errorf("parsing blob: %w", err)
	}
	if env.State == nil {
		return State{}, errors.New("missing state object")
	}
	for _, k := range requiredKeys {
		if _, ok := env.State[k]; !ok {
			return State{}, fmt.Errorf("missing key %q", k)
		}
	}

	st := emptyState()
	if leadsWith(env.State["runs"], '[') {
		if err := json.Unmarshal(env.State["runs"], &st.Runs); err != nil {
			return State{}, fmt.Errorf("decoding runs: %w", err)
		}
	}
	if !isFalsy(env.State["selectedRun"]) {
		if err := json.Unmarshal(env.State["selectedRun"], &st.SelectedRun); err != nil {
			return State{}, fmt.Errorf("decoding selectedRun: %w", err)
		}
	}
	if leadsWith(env.State["summaries"], '{') {
		if err := json.Unmarshal(env.State["summaries"], &st.Summaries); err != nil {
			return State{}, fmt.Errorf("decoding summaries: %w", err)
		}
	}
	return st, nil
}

func leadsWith(raw json.RawMessage, c byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == c
}

// isFalsy matches null, false, zero and the empty string.
func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "null", "false", "0", "-0", "0.0", `""`:
		return true
	}
	return false
}

// Snapshot returns a deep enough copy that callers cannot mutate the store.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (st State) clone() State {
	out := State{
		Runs:      append([]domain.Run{}, st.Runs...),
		Summaries: make(map[string]domain.DocumentSummary, len(st.Summaries)),
	}
	for k, v := range st.Summaries {
		out.Summaries[k] = v
	}
	if st.SelectedRun != nil {
		sel := *st.SelectedRun
		out.SelectedRun = &sel
	}
	return out
}

// Runs returns the cached runs, newest first.
func (s *Store) Runs() []domain.Run {
	return s.Snapshot().Runs
}

// Run returns the cached run with the given id.
func (s *Store) Run(id string) (domain.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.Runs {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Run{}, false
}

// Selected returns the selected run, or nil.
func (s *Store) Selected() *domain.Run {
	return s.Snapshot().SelectedRun
}

// Summary returns the cached summary for a run.
func (s *Store) Summary(runID string) (domain.DocumentSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.state.Summaries[runID]
	return sum, ok
}

// SetRuns replaces the run list.
func (s *Store) SetRuns(ctx context.Context, runs []domain.Run) error {
	return s.mutate(ctx, nil, func(st *State) {
		st.Runs = append([]domain.Run{}, runs...)
	})
}

// AddRun prepends run.
func (s *Store) AddRun(ctx context.Context, run domain.Run) error {
	return s.mutate(ctx, nil, func(st *State) {
		st.Runs = append([]domain.Run{run}, st.Runs...)
	})
}

// UpdateRun merges patch into the run with the given id and into the
// selected run when it is the same run. Unknown ids change nothing.
func (s *Store) UpdateRun(ctx context.Context, id string, patch domain.RunPatch) error {
	return s.mutate(ctx, nil, func(st *State) {
		for i := range st.Runs {
			if st.Runs[i].ID == id {
				st.Runs[i] = patch.Apply(st.Runs[i])
			}
		}
		if st.SelectedRun != nil && st.SelectedRun.ID == id {
			merged := patch.Apply(*st.SelectedRun)
			st.SelectedRun = &merged
		}
	})
}

// SelectRun sets the selected run; nil clears the selection.
func (s *Store) SelectRun(ctx context.Context, run *domain.Run) error {
	return s.mutate(ctx, nil, func(st *State) {
		if run == nil {
			st.SelectedRun = nil
			return
		}
		sel := *run
		st.SelectedRun = &sel
	})
}

// ClearRuns empties runs and the selection. Summaries are kept.
func (s *Store) ClearRuns(ctx context.Context) error {
	return s.mutate(ctx, nil, func(st *State) {
		st.Runs = []domain.Run{}
		st.SelectedRun = nil
	})
}

// SetSummary caches a run's document summary.
func (s *Store) SetSummary(ctx context.Context, runID string, sum domain.DocumentSummary) error {
	return s.mutate(ctx, nil, func(st *State) {
		st.Summaries[runID] = sum
	})
}

// RemoveRun drops a run, its summary and the selection if it pointed at
// it. via, when non-nil, is used instead of the store's persister so the
// write can join a caller's transaction.
func (s *Store) RemoveRun(ctx context.Context, id string, via Persister) error {
	return s.mutate(ctx, via, func(st *State) {
		kept := st.Runs[:0:0]
		for _, r := range st.Runs {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		st.Runs = kept
		if st.SelectedRun != nil && st.SelectedRun.ID == id {
			st.SelectedRun = nil
		}
		delete(st.Summaries, id)
	})
}

// mutate applies fn to a copy, persists it and only then swaps it in, so
// a failed write leaves the cache as it was.
func (s *Store) mutate(ctx context.Context, via Persister, fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	fn(&next)

	p := via
	if p == nil {
		p = s.persister
	}
	if p != nil {
		blob, err := json.Marshal(envelope{State: next, Version: Version})
		if err != nil {
			return fmt.Errorf("encoding run store: %w", err)
		}
		if err := p.Put(ctx, Key, blob); err != nil {
			return fmt.Errorf("saving run store: %w", err)
		}
	}
	s.state = next
	return nil
}
