// Package backend is the HTTP client for the requirements-planning API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

func New(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// long selects the long-running timeout.
	long bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("marshaling request: %w", err)
	}
	req.body = data
	req.contentType = "application/json"
	return req, nil
}

// response is a successful reply whose body has not been read. Close
// releases the request deadline as well as the body.
type response struct {
	*http.Response
	cancel context.CancelFunc
}

func (r *response) Close() error {
	err := r.Body.Close()
	r.cancel()
	return err
}

// open sends req and returns the first 2xx response. GETs are retried on
// connection errors and 5xx; nothing else is.
func (c *Client) open(ctx context.Context, req request) (*response, error) {
	start := time.Now()
	requestID := uuid.New().String()

	timeout := c.cfg.Timeout
	if req.long {
		timeout = c.cfg.LongTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)

	attempts := 1
	if req.method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	var (
		lastErr    error
		lastStatus int
		tries      int
	)
	for i := 0; i < attempts; i++ {
		if i > 0 && !c.backoff(callCtx, i) {
			break
		}
		tries++
		resp, err := c.send(callCtx, req, requestID)
		if err == nil && resp.StatusCode < 300 {
			c.observer.OnCallComplete(CallEvent{
				RequestID: requestID,
				Method:    req.method,
				Path:      req.path,
				Status:    resp.StatusCode,
				Attempts:  tries,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return &response{Response: resp, cancel: cancel}, nil
		}

		if err != nil {
			lastErr, lastStatus = err, 0
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			lastErr, lastStatus = newAPIError(resp.StatusCode, body), resp.StatusCode
		}

		if callCtx.Err() != nil || !retryable(lastErr) {
			break
		}
	}

	err := c.classify(ctx, callCtx, req, lastErr)
	cancel()
	c.observer.OnCallComplete(CallEvent{
		RequestID: requestID,
		Method:    req.method,
		Path:      req.path,
		Status:    lastStatus,
		Attempts:  tries,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return nil, err
}

func (c *Client) send(ctx context.Context, req request, requestID string) (*http.Response, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	return c.http.Do(httpReq)
}

// backoff waits before retry n. It reports false when the context ended.
func (c *Client) backoff(ctx context.Context, n int) bool {
	if c.cfg.RetryBackoff <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(time.Duration(n) * c.cfg.RetryBackoff)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// classify maps the final failure to a package sentinel. Caller
// cancellation is returned as is.
func (c *Client) classify(parent, callCtx context.Context, req request, err error) error {
	op := req.method + " " + req.path
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("%s: %w", op, parent.Err())
	case callCtx.Err() != nil:
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case isConnectionError(err):
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	case err == nil:
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func retryable(err error) bool {
	if isConnectionError(err) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// do sends req and decodes a JSON reply into out. A nil out discards the
// body.
func (c *Client) do(ctx context.Context, req request, out any) error {
	resp, err := c.open(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading %s response: %w", req.path, err)
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path}, out)
}

func (c *Client) post(ctx context.Context, path string, payload any, long bool, out any) error {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	req.long = long
	return c.do(ctx, req, out)
}

// Available reports whether the backend answers at all.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
