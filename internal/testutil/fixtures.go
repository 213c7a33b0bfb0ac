package testutil

import (
	"time"

	"github.com/alexanderramin/reqplan/internal/domain"
	"github.com/google/uuid"
)

// DecompositionJSON is a backend decomposition payload with two epics.
// Checkout has no epic estimate so its hours come from its stories.
const DecompositionJSON = `{
  "run_id": "run-fixture",
  "generated_at": "2025-06-01T10:00:00Z",
  "schema_version": "1.0",
  "total_estimated_hours": 30,
  "epics": [
    {
      "id": "E1",
      "title": "Accounts",
      "priority": "High",
      "estimated_hours": 12,
      "stories": [
        {
          "id": "S1",
          "title": "Sign up",
          "estimated_hours": 6,
          "team": "frontend",
          "subtasks": [
            {"id": "T1", "title": "Form", "estimated_hours": 4},
            {"id": "T2", "title": "Email check", "estimated_hours": 2}
          ]
        },
        {"id": "S2", "title": "Log in", "estimated_hours": 6}
      ]
    },
    {
      "id": "E2",
      "title": "Checkout",
      "stories": [
        {"id": "S3", "title": "Cart", "estimated_hours": 12, "priority": "Critical"},
        {"id": "S4", "title": "Payment", "estimated_hours": 6}
      ]
    }
  ]
}`

// RunOption customizes a test run.
type RunOption func(*domain.Run)

func WithFileName(name string) RunOption {
	return func(r *domain.Run) { r.FileName = name }
}

func WithRunStatus(s domain.RunStatus) RunOption {
	return func(r *domain.Run) { r.Status = s }
}

func WithSummaryStatus(s domain.StepStatus) RunOption {
	return func(r *domain.Run) { r.Steps.Summary.Status = s }
}

func WithDecompositionStatus(s domain.StepStatus) RunOption {
	return func(r *domain.Run) { r.Steps.Decomposition.Status = s }
}

// NewTestRun returns a freshly uploaded run. An empty id gets a uuid.
func NewTestRun(id string, opts ...RunOption) domain.Run {
	if id == "" {
		id = uuid.New().String()
	}
	r := domain.NewUploadedRun(id, "requirements.pdf", 2048, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	for _, o := range opts {
		o(&r)
	}
	return r
}

// NewTestDecomposition mirrors DecompositionJSON as a domain value.
func NewTestDecomposition() domain.Decomposition {
	return domain.Decomposition{
		RunID:      "run-fixture",
		TotalHours: domain.HoursOf(30),
		Epics: []domain.Epic{
			{
				ID: "E1", Title: "Accounts", Priority: domain.PriorityHigh, Estimate: domain.HoursOf(12),
				Stories: []domain.Story{
					{
						ID: "S1", Title: "Sign up", Estimate: domain.HoursOf(6), Team: "frontend",
						Subtasks: []domain.Subtask{
							{ID: "T1", Title: "Form", Estimate: domain.HoursOf(4)},
							{ID: "T2", Title: "Email check", Estimate: domain.HoursOf(2)},
						},
					},
					{ID: "S2", Title: "Log in", Estimate: domain.HoursOf(6)},
				},
			},
			{
				ID: "E2", Title: "Checkout",
				Stories: []domain.Story{
					{ID: "S3", Title: "Cart", Estimate: domain.HoursOf(12), Priority: domain.PriorityCritical},
					{ID: "S4", Title: "Payment", Estimate: domain.HoursOf(6)},
				},
			},
		},
	}
}

// NewTestUsers returns two assignable accounts.
func NewTestUsers() []domain.User {
	return []domain.User{
		{AccountID: "acc-ada", DisplayName: "Ada Lovelace", EmailAddress: "ada@example.com"},
		{AccountID: "acc-alan", DisplayName: "Alan Turing", EmailAddress: "alan@example.com"},
	}
}
