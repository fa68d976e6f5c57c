package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidRoot is returned when the shared root path is empty.
	ErrInvalidRoot = errors.New("invalid root: must not be empty")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidWaitTimeout is returned when the wait timeout is negative.
	// Zero is valid and disables the timeout.
	ErrInvalidWaitTimeout = errors.New("invalid wait timeout: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when fewer than one attempt is configured.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Zero disables the limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidTopN is returned when a report table size is not positive.
	ErrInvalidTopN = errors.New("invalid table size: must be at least 1")

	// ErrInvalidTokenPattern is returned when the token pattern does not compile.
	ErrInvalidTokenPattern = errors.New("invalid token pattern")
)
