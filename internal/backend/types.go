package backend

import (
	"encoding/json"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// UploadResponse is returned by the upload endpoint. DocumentID is the
// new run's id.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
}

type runsResponse struct {
	Data []domain.Run `json:"data"`
}

// DecomposeResult is the outcome of a decomposition request.
type DecomposeResult struct {
	EpicsCount  int             `json:"epics_count"`
	TotalHours  float64         `json:"total_hours"`
	Warnings    []string        `json:"warnings"`
	WasRepaired bool            `json:"was_repaired"`
	Validation  json.RawMessage `json:"validation,omitempty"`
}

// ValidationReport is the backend's structural check of a stored
// decomposition.
type ValidationReport struct {
	IsValid    bool            `json:"is_valid"`
	Errors     []string        `json:"errors"`
	Warnings   []string        `json:"warnings"`
	Statistics ValidationStats `json:"statistics"`
}

type ValidationStats struct {
	EpicsCount    int `json:"epics_count"`
	StoriesCount  int `json:"stories_count"`
	SubtasksCount int `json:"subtasks_count"`
}

// GanttRequest asks the backend to schedule a run's work.
type GanttRequest struct {
	StartDate string `json:"start_date,omitempty"`
	TeamSize  int    `json:"team_size"`
}

type usersResponse struct {
	Users []domain.User `json:"users"`
}

type suggestRequest struct {
	Users []domain.User           `json:"users"`
	Tasks []domain.AssignmentTask `json:"tasks"`
}

type suggestionsResponse struct {
	Suggestions domain.Assignments `json:"suggestions"`
}

type syncRequest struct {
	Assignments domain.Assignments `json:"assignments"`
}
