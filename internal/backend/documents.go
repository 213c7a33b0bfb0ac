package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexanderramin/reqplan/internal/domain"
)

// Upload sends a document as multipart field "file".
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResponse{}, fmt.Errorf("reading %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("building upload form: %w", err)
	}

	var out UploadResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/v1/documents/upload",
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		long:        true,
	}, &out)
	if err != nil {
		return UploadResponse{}, err
	}
	return out, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Client) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	var out runsResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/documents/runs",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []domain.Run{}
	}
	return out.Data, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (domain.Run, error) {
	var out domain.Run
	if err := c.get(ctx, "/api/v1/documents/runs/"+url.PathEscape(runID), &out); err != nil {
		return domain.Run{}, err
	}
	return out, nil
}

func (c *Client) GetSummary(ctx context.Context, runID string) (domain.DocumentSummary, error) {
	var out domain.DocumentSummary
	if err := c.get(ctx, "/api/v1/documents/runs/"+url.PathEscape(runID)+"/summary", &out); err != nil {
		return domain.DocumentSummary{}, err
	}
	return out, nil
}
