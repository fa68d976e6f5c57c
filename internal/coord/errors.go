package coord

import "errors"

var (
	// ErrStalled is returned when an awaited file does not appear within the wait timeout.
	ErrStalled = errors.New("upstream marker did not appear before the wait timeout")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
)
