package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("backend request timed out")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found on backend")

	// ErrGone is returned for 410 responses. The backend uses it when
	// server-side decomposition is disabled.
	ErrGone = errors.New("endpoint disabled on backend")

	// ErrServer is matched by any 5xx response.
	ErrServer = errors.New("backend server error")

	// ErrStreamFailed wraps an error event received on the progress stream.
	ErrStreamFailed = errors.New("decomposition failed")

	// ErrStreamIncomplete indicates the progress stream closed without a
	// complete or error event.
	ErrStreamIncomplete = errors.New("stream ended before completion")
)

// APIError is a non-2xx response with its message extracted from the body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusGone:
		return ErrGone
	case e.Status >= 500:
		return ErrServer
	default:
		return nil
	}
}

// newAPIError extracts a message from an error body. A plain string body
// is used as is; a JSON object contributes its detail or message field.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			for _, key := range []string{"detail", "message", "error"} {
				if msg := rawMessage(obj[key]); msg != "" {
					return msg
				}
			}
		}
	}
	if len(trimmed) > 0 {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil && s != "" {
			return s
		}
		return string(trimmed)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}

// rawMessage renders a detail value. Validation errors arrive as a list of
// objects, which is kept as compact JSON.
func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrGone):
		return "GONE"
	case errors.Is(err, ErrServer):
		return "SERVER"
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return fmt.Sprintf("HTTP_%d", apiErr.Status)
		}
		return "UNKNOWN"
	}
}
