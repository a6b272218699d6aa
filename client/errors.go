package client

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the caller's context was cancelled before
// the exchange finished. It is never returned for timeouts or network
// failures.
var ErrCancelled = errors.New("request cancelled")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API %d: %s", e.StatusCode, e.Detail)
	}
	if e.Body != "" {
		return fmt.Sprintf("API %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API %d", e.StatusCode)
}

// IsCancelled reports whether err stems from caller cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Detail returns the backend-supplied detail message carried by err, if any.
func Detail(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}
