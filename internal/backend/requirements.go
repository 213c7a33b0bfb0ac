package backend

import (
	"context"
	"encoding/json"
	"net/url"
)

// TriggerDecomposition starts a server-side decomposition. Backends that
// have it disabled answer 410, surfaced as ErrGone.
func (c *Client) TriggerDecomposition(ctx context.Context, runID string) error {
	return c.post(ctx, "/api/v1/requirements/decompose/"+url.PathEscape(runID), nil, true, nil)
}

// GetDecomposition returns the stored decomposition payload.
func (c *Client) GetDecomposition(ctx context.Context, runID string) ([]byte, error) {
	var raw []byte
	if err := c.get(ctx, "/api/v1/requirements/decomposition/"+url.PathEscape(runID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetDecompositionRaw returns the unprocessed decomposition payload, the
// form the timeline and assignments are built from.
func (c *Client) GetDecompositionRaw(ctx context.Context, runID string) ([]byte, error) {
	var raw []byte
	if err := c.get(ctx, "/api/v1/requirements/decomposition_raw/"+url.PathEscape(runID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) ValidateDecomposition(ctx context.Context, runID string) (ValidationReport, error) {
	var out ValidationReport
	if err := c.get(ctx, "/api/v1/requirements/decomposition_validation/"+url.PathEscape(runID), &out); err != nil {
		return ValidationReport{}, err
	}
	return out, nil
}

// GenerateGantt asks the backend to schedule the run. The chart is
// returned undecoded.
func (c *Client) GenerateGantt(ctx context.Context, runID string, req GanttRequest) (json.RawMessage, error) {
	var raw []byte
	if err := c.post(ctx, "/api/v1/gantt/generate/"+url.PathEscape(runID), req, false, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) GetGantt(ctx context.Context, runID string) (json.RawMessage, error) {
	var raw []byte
	if err := c.get(ctx, "/api/v1/gantt/chart/"+url.PathEscape(runID), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
