package model

import (
	"fmt"
	"time"
)

// Statistics holds the per-document text statistics computed during extraction.
type Statistics struct {
	// WordCount is the number of alphabetic words (a contraction counts once).
	WordCount int `json:"word_count"`

	// SentenceCount is the number of non-empty segments between runs of . ! ?
	SentenceCount int `json:"sentence_count"`

	// ParagraphCount is the number of blank-line separated blocks, at least 1.
	ParagraphCount int `json:"paragraph_count"`

	// AvgWordLength is total word characters divided by WordCount, 4 decimal places.
	AvgWordLength float64 `json:"avg_word_length"`
}

// Validate checks the statistics invariants.
func (s Statistics) Validate() error {
	if s.WordCount < 0 || s.SentenceCount < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidStatistics)
	}
	if s.ParagraphCount < 1 {
		return fmt.Errorf("%w: paragraph count %d is below 1", ErrInvalidStatistics, s.ParagraphCount)
	}
	if s.WordCount == 0 && s.AvgWordLength != 0 {
		return fmt.Errorf("%w: average word length %v without words", ErrInvalidStatistics, s.AvgWordLength)
	}
	if s.AvgWordLength < 0 {
		return fmt.Errorf("%w: negative average word length", ErrInvalidStatistics)
	}
	return nil
}

// Document is one extracted page, written by the extraction stage as
// processed/<base>.json and read back by the analysis stage.
//
// A Document is immutable once written. The pipeline never deletes it;
// a later extraction run overwrites it.
type Document struct {
	// SourceFile is the raw artifact base name (e.g. "page_3.html").
	// It doubles as the document identifier, derived from fetch order.
	SourceFile string `json:"source_file"`

	// Title is the text of the first <title> element, if any.
	Title string `json:"title,omitempty"`

	// Text is the markup-free text with whitespace collapsed to single spaces.
	Text string `json:"text"`

	// Statistics are computed from the stripped text.
	Statistics Statistics `json:"statistics"`

	// Links contains every href attribute value in document order, duplicates kept.
	Links []string `json:"links"`

	// Images contains every src attribute value in document order, duplicates kept.
	Images []string `json:"images"`

	// ProcessedAt is when the document was extracted.
	ProcessedAt time.Time `json:"processed_at"`
}

// NewDocument builds a validated Document. Nil link and image slices are
// normalized to empty slices so they serialize as [] rather than null.
func NewDocument(sourceFile, title, text string, stats Statistics, links, images []string, processedAt time.Time) (*Document, error) {
	if sourceFile == "" {
		return nil, ErrEmptySourceFile
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("document %s: %w", sourceFile, err)
	}
	if links == nil {
		links = []string{}
	}
	if images == nil {
		images = []string{}
	}
	return &Document{
		SourceFile:  sourceFile,
		Title:       title,
		Text:        text,
		Statistics:  stats,
		Links:       links,
		Images:      images,
		ProcessedAt: processedAt.UTC(),
	}, nil
}
