package domain

import (
	"fmt"
	"time"
)

// Decomposition is the backend's breakdown of one run's requirements.
type Decomposition struct {
	RunID         string
	GeneratedAt   string
	SchemaVersion string
	TotalHours    Hours
	TimelineWeeks int
	Warnings      []string
	Epics         []Epic
}

type Epic struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      string
	Estimate    Hours
	Team        string
	Labels      []string
	Stories     []Story
}

type Story struct {
	ID                 string
	Title              string
	Description        string
	AcceptanceCriteria []string
	Priority           Priority
	Status             string
	Estimate           Hours
	Team               string
	StoryPoints        int
	Subtasks           []Subtask
}

type Subtask struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      string
	Estimate    Hours
	Team        string
}

// EffectiveHours is the epic's own estimate, or the sum of its stories'
// estimates when it has none. Stories without an estimate count as zero.
func (e Epic) EffectiveHours() float64 {
	if v, ok := e.Estimate.Value(); ok {
		return v
	}
	var sum float64
	for _, s := range e.Stories {
		sum += s.Estimate.Or(0)
	}
	return sum
}

// ProjectHours is the stated total, or the sum of every epic's effective
// hours when the total is absent.
func (d Decomposition) ProjectHours() float64 {
	if v, ok := d.TotalHours.Value(); ok {
		return v
	}
	var sum float64
	for _, e := range d.Epics {
		sum += e.EffectiveHours()
	}
	return sum
}

// Counts returns the number of epics, stories and subtasks.
func (d Decomposition) Counts() (epics, stories, subtasks int) {
	epics = len(d.Epics)
	for _, e := range d.Epics {
		stories += len(e.Stories)
		for _, s := range e.Stories {
			subtasks += len(s.Subtasks)
		}
	}
	return epics, stories, subtasks
}

// CachedDecomposition is a raw backend payload stored locally per run.
type CachedDecomposition struct {
	RunID     string
	Payload   []byte
	FetchedAt time.Time
}

// EpicKey returns the epic's ID, or a positional EPIC-<n> (1-based) when
// the backend did not assign one.
func EpicKey(e Epic, index int) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("EPIC-%d", index+1)
}

// StoryKey returns the story's ID, or <epicKey>-S<n> (1-based).
func StoryKey(epicKey string, s Story, index int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("%s-S%d", epicKey, index+1)
}

// SubtaskKey returns the subtask's ID, or <storyKey>-T<n> (1-based).
func SubtaskKey(storyKey string, st Subtask, index int) string {
	if st.ID != "" {
		return st.ID
	}
	return fmt.Sprintf("%s-T%d", storyKey, index+1)
}
