package api

import (
	"fmt"
	"net/http"

	"coursekit/internal/editor"
)

// HTTPError represents a non-2xx answer from the course REST API, or a 2xx
// answer whose envelope reports failure.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
}

// IsRetryable returns true for 5xx errors and 429 (rate limit).
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Unwrap maps 404 answers to editor.ErrNotFound.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return editor.ErrNotFound
	}
	return nil
}
