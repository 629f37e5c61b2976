package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuth is returned when the API token is missing, invalid or revoked.
var ErrAuth = errors.New("invalid or missing api token")

// ErrNotFound is returned when a project or section cannot be resolved.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a name matches more than one project or section.
var ErrAmbiguous = errors.New("ambiguous")

// FetchError reports a failed call against the task service.
// StatusCode is zero for network failures.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports 401 and 403 responses as ErrAuth.
func (e *FetchError) Is(target error) bool {
	if target != ErrAuth {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
