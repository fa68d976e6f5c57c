package model

import (
	"fmt"
	"time"
)

// WordFrequency is one row of the global top-words table.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`

	// Frequency is Count divided by the total token occurrences in the corpus.
	Frequency float64 `json:"frequency"`
}

// SimilarityPair is the Jaccard similarity between the distinct token sets of
// two documents. Doc1 always sorts before Doc2.
type SimilarityPair struct {
	Doc1       string  `json:"doc1"`
	Doc2       string  `json:"doc2"`
	Similarity float64 `json:"similarity"`
}

// NewSimilarityPair builds a validated SimilarityPair.
func NewSimilarityPair(doc1, doc2 string, similarity float64) (SimilarityPair, error) {
	if doc1 == doc2 {
		return SimilarityPair{}, fmt.Errorf("%w: %s", ErrSelfPair, doc1)
	}
	if similarity < 0 || similarity > 1 {
		return SimilarityPair{}, fmt.Errorf("%w: %v", ErrInvalidSimilarity, similarity)
	}
	if doc2 < doc1 {
		doc1, doc2 = doc2, doc1
	}
	return SimilarityPair{Doc1: doc1, Doc2: doc2, Similarity: similarity}, nil
}

// BigramCount is one row of the top-bigrams table.
type BigramCount struct {
	Bigram string `json:"bigram"`
	Count  int    `json:"count"`
}

// TrigramCount is one row of the top-trigrams table.
type TrigramCount struct {
	Trigram string `json:"trigram"`
	Count   int    `json:"count"`
}

// Readability holds the corpus-level readability metrics, each rounded to 4 decimal places.
type Readability struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`

	// ComplexityScore is the type-token ratio: unique tokens / total tokens.
	ComplexityScore float64 `json:"complexity_score"`
}

// Report is the analysis stage's final report (analysis/final_report.json).
// Every field other than ProcessingTimestamp is a pure function of the
// extracted documents, so two runs over the same inputs differ only there.
type Report struct {
	ProcessingTimestamp time.Time        `json:"processing_timestamp"`
	DocumentsProcessed  int              `json:"documents_processed"`
	TotalWords          int              `json:"total_words"`
	UniqueWords         int              `json:"unique_words"`
	TopWords            []WordFrequency  `json:"top_100_words"`
	DocumentSimilarity  []SimilarityPair `json:"document_similarity"`
	TopBigrams          []BigramCount    `json:"top_bigrams"`
	TopTrigrams         []TrigramCount   `json:"top_trigrams"`
	Readability         Readability      `json:"readability"`
}

// NewEmptyReport returns the report of an empty corpus: zero counts, empty
// tables and zero readability metrics.
func NewEmptyReport(now time.Time) *Report {
	return &Report{
		ProcessingTimestamp: now.UTC(),
		TopWords:            []WordFrequency{},
		DocumentSimilarity:  []SimilarityPair{},
		TopBigrams:          []BigramCount{},
		TopTrigrams:         []TrigramCount{},
	}
}
