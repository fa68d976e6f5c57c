package model

import "errors"

// Record validation errors returned by the constructors in this package.
var (
	// ErrEmptySourceFile is returned when a document has no source file name.
	ErrEmptySourceFile = errors.New("document source file is empty")

	// ErrInvalidStatistics is returned when document statistics violate their invariants
	// (negative counts, zero paragraphs, or a word length without words).
	ErrInvalidStatistics = errors.New("invalid document statistics")

	// ErrSelfPair is returned when a similarity pair names the same document twice.
	ErrSelfPair = errors.New("similarity pair refers to the same document")

	// ErrInvalidSimilarity is returned when a similarity score is outside [0, 1].
	ErrInvalidSimilarity = errors.New("similarity score must be within [0, 1]")

	// ErrUnknownStage is returned for a stage name other than fetch, process or analyze.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrInconsistentCounts is returned when a fetch marker's counts do not add up.
	ErrInconsistentCounts = errors.New("fetch marker counts are inconsistent")
)
