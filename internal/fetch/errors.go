package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrHTTPStatus is wrapped by StatusError for responses with status >= 400.
	ErrHTTPStatus = errors.New("unsuccessful HTTP status")

	// ErrInvalidAttempts is returned when the attempt count is below 1.
	ErrInvalidAttempts = errors.New("max attempts must be at least 1")
)

// StatusError reports a response whose status code counts as a failed attempt.
type StatusError struct {
	Code int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, http.StatusText(e.Code))
}

// Unwrap returns ErrHTTPStatus.
func (e *StatusError) Unwrap() error {
	return ErrHTTPStatus
}
