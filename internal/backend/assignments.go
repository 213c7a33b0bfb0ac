package backend

import (
	"context"
	"net/url"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// ListUsers returns assignable accounts. refresh asks the backend to
// reload them from the ticketing system first.
func (c *Client) ListUsers(ctx context.Context, refresh bool) ([]domain.User, error) {
	path := "/api/v1/jira/users"
	if refresh {
		path += "/refresh"
	}
	var out usersResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// SuggestAssignees asks the backend to propose an assignee per task.
func (c *Client) SuggestAssignees(ctx context.Context, runID string, users []domain.User, tasks []domain.AssignmentTask) (domain.Assignments, error) {
	var out suggestionsResponse
	req := suggestRequest{Users: users, Tasks: tasks}
	if err := c.post(ctx, "/api/v1/assignments/suggest/"+url.PathEscape(runID), req, true, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Suggestions), nil
}

// GetSuggestions returns previously generated suggestions.
func (c *Client) GetSuggestions(ctx context.Context, runID string) (domain.Assignments, error) {
	var out suggestionsResponse
	if err := c.get(ctx, "/api/v1/assignments/suggestions/"+url.PathEscape(runID), &out); err != nil {
		return nil, err
	}
	return nonNil(out.Suggestions), nil
}

func (c *Client) GetFinalAssignments(ctx context.Context, runID string) (domain.FinalAssignments, error) {
	var out domain.FinalAssignments
	if err := c.get(ctx, "/api/v1/assignments/final/"+url.PathEscape(runID), &out); err != nil {
		return domain.FinalAssignments{}, err
	}
	return out, nil
}

func (c *Client) SaveFinalAssignments(ctx context.Context, runID string, fa domain.FinalAssignments) error {
	return c.post(ctx, "/api/v1/assignments/final/"+url.PathEscape(runID), fa, false, nil)
}

// Sync pushes assignments to the ticketing system.
func (c *Client) Sync(ctx context.Context, runID string, assignments domain.Assignments) (domain.SyncResult, error) {
	var out domain.SyncResult
	if err := c.post(ctx, "/api/v1/jira-sync/sync/"+url.PathEscape(runID), syncRequest{Assignments: assignments}, true, &out); err != nil {
		return domain.SyncResult{}, err
	}
	return out, nil
}

// GetSyncResult returns the stored sync outcome.
func (c *Client) GetSyncResult(ctx context.Context, runID string) (domain.SyncResult, error) {
	var out domain.SyncResult
	if err := c.get(ctx, "/api/v1/jira-sync/sync/"+url.PathEscape(runID), &out); err != nil {
		return domain.SyncResult{}, err
	}
	return out, nil
}

func nonNil(a domain.Assignments) domain.Assignments {
	if a == nil {
		return domain.Assignments{}
	}
	return a
}
