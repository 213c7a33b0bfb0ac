package service

import (
	"fmt"
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// Loaded is a decomposition together with where it came from.
type Loaded struct {
	Decomposition domain.Decomposition
	Raw           []byte
	// Problems are non-fatal issues found in the payload.
	Problems  []error
	FromCache bool
	FetchedAt time.Time
}

// StreamMode picks the decomposition endpoint.
type StreamMode int

const (
	StreamDefault StreamMode = iota
	StreamEnhanced
)

func (m StreamMode) String() string {
	if m == StreamEnhanced {
		return "enhanced"
	}
	return "streaming"
}

// SyncReport is the ticket sync outcome for a run.
type SyncReport struct {
	RunID       string
	Result      domain.SyncResult
	Assignments domain.FinalAssignments
	Success     int
	Failed      int
	// StepStatus is the jira_sync step status recorded for the run, empty
	// when the step was left unchanged.
	StepStatus domain.StepStatus
}

// Message is the one-line outcome shown after a sync.
func (r *SyncReport) Message() string {
	if r.Failed == 0 {
		return fmt.Sprintf("All %d tickets created successfully!", r.Success)
	}
	return fmt.Sprintf("%d tickets created, %d failed.", r.Success, r.Failed)
}
