package adapi

import (
	"errors"
	"fmt"
)

// ErrRollbackConflict is returned when the backend rejects a rollback because
// the action was already rolled back or was never rollback-possible.
// Discriminate with errors.Is; the wrapped APIError carries the response body.
var ErrRollbackConflict = errors.New("action rollback rejected")

// APIError represents a non-2xx response from the backend.
// It enables typed discrimination of HTTP failures via errors.As.
type APIError struct {
	Status int    // HTTP status code
	Body   string // response body, truncated for display
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend API %d: %s", e.Status, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
// Server-side errors and rate limits are retryable; client errors are not.
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == 429
}
