package analysis

import "errors"

var (
	// ErrInvalidPattern is returned when the token pattern does not compile.
	ErrInvalidPattern = errors.New("invalid token pattern")

	// ErrInvalidLimit is returned when a top-K limit is negative.
	ErrInvalidLimit = errors.New("top-K limit must not be negative")
)
