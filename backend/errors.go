package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotReady is returned when the backend has no view data for the
	// user yet (it answers 204 while the first collection runs).
	ErrNotReady = errors.New("backend: data not ready")

	// ErrUnauthorized is returned when the backend rejects the forwarded
	// user cookie.
	ErrUnauthorized = errors.New("backend: not authenticated")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("backend: not found")
)

// APIError is a non-success response from the backend.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	State   string `json:"status"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the package sentinels so callers
// can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
