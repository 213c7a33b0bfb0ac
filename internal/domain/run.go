package domain

import "time"

// Run is one end-to-end processing session for an uploaded document.
type Run struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
	CreatedAt string    `json:"created_at"`
	Status    RunStatus `json:"status"`
	Steps     RunSteps  `json:"steps"`
}

// Step is the state of one processing stage. Timestamp is nil until the
// stage has started.
type Step struct {
	Status    StepStatus `json:"status"`
	Timestamp *string    `json:"timestamp"`
}

type RunSteps struct {
	Upload        Step `json:"upload"`
	Summary       Step `json:"summary"`
	Decomposition Step `json:"decomposition"`
	Gantt         Step `json:"gantt"`
	JiraSync      Step `json:"jira_sync"`
}

// StepName identifies a stage for display ordering.
type StepName string

const (
	StepUpload        StepName = "upload"
	StepSummary       StepName = "summary"
	StepDecomposition StepName = "decomposition"
	StepGantt         StepName = "gantt"
	StepJiraSync      StepName = "jira_sync"
)

// StepOrder is the display order of the processing stages.
var StepOrder = []StepName{StepUpload, StepSummary, StepDecomposition, StepGantt, StepJiraSync}

// Get returns the step with the given name.
func (s RunSteps) Get(name StepName) Step {
	switch name {
	case StepUpload:
		return s.Upload
	case StepSummary:
		return s.Summary
	case StepDecomposition:
		return s.Decomposition
	case StepGantt:
		return s.Gantt
	case StepJiraSync:
		return s.JiraSync
	default:
		return Step{}
	}
}

// NewStep returns a step with the given status stamped at now.
func NewStep(status StepStatus, now time.Time) Step {
	ts := now.UTC().Format(time.RFC3339)
	return Step{Status: status, Timestamp: &ts}
}

// NewUploadedRun builds the local record for a freshly uploaded document:
// upload done, summary started, everything else pending.
func NewUploadedRun(id, fileName string, size int64, now time.Time) Run {
	return Run{
		ID:        id,
		FileName:  fileName,
		FileSize:  size,
		CreatedAt: now.UTC().Format(time.RFC3339),
		Status:    RunUploaded,
		Steps: RunSteps{
			Upload:        NewStep(StepCompleted, now),
			Summary:       NewStep(StepInProgress, now),
			Decomposition: Step{Status: StepPending},
			Gantt:         Step{Status: StepPending},
			JiraSync:      Step{Status: StepPending},
		},
	}
}

// DisplayID returns the first 8 characters of the run ID.
func (r *Run) DisplayID() string {
	if len(r.ID) >= 8 {
		return r.ID[:8]
	}
	return r.ID
}

// RunPatch is a shallow update: non-nil fields replace the run's fields
// wholesale.
type RunPatch struct {
	FileName  *string
	FilePath  *string
	FileSize  *int64
	CreatedAt *string
	Status    *RunStatus
	Steps     *RunSteps
}

// PatchFromRun builds a patch that overwrites every field with r's values.
// Used when merging a freshly fetched run into the cache.
func PatchFromRun(r Run) RunPatch {
	return RunPatch{
		FileName:  &r.FileName,
		FilePath:  &r.FilePath,
		FileSize:  &r.FileSize,
		CreatedAt: &r.CreatedAt,
		Status:    &r.Status,
		Steps:     &r.Steps,
	}
}

// Apply returns a copy of r with the patch merged in.
func (p RunPatch) Apply(r Run) Run {
	if p.FileName != nil {
		r.FileName = *p.FileName
	}
	if p.FilePath != nil {
		r.FilePath = *p.FilePath
	}
	if p.FileSize != nil {
		r.FileSize = *p.FileSize
	}
	if p.CreatedAt != nil {
		r.CreatedAt = *p.CreatedAt
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Steps != nil {
		r.Steps = *p.Steps
	}
	return r
}
