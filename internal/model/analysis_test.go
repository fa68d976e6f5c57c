package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestNewSimilarityPair tests similarity pair validation.
func TestNewSimilarityPair(t *testing.T) {
	t.Parallel()

	t.Run("orders document names", func(t *testing.T) {
		t.Parallel()

		p, err := NewSimilarityPair("page_2.json", "page_1.json", 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Doc1 != "page_1.json" || p.Doc2 != "page_2.json" {
			t.Errorf("expected ordered pair, got %+v", p)
		}
	})

	t.Run("rejects self pair", func(t *testing.T) {
		t.Parallel()

		if _, err := NewSimilarityPair("a", "a", 1); !errors.Is(err, ErrSelfPair) {
			t.Errorf("expected ErrSelfPair, got %v", err)
		}
	})

	t.Run("rejects out of range scores", func(t *testing.T) {
		t.Parallel()

		for _, score := range []float64{-0.1, 1.01} {
			if _, err := NewSimilarityPair("a", "b", score); !errors.Is(err, ErrInvalidSimilarity) {
				t.Errorf("score %v: expected ErrInvalidSimilarity, got %v", score, err)
			}
		}
	})
}

// TestNewEmptyReport tests the empty corpus report shape.
func TestNewEmptyReport(t *testing.T) {
	t.Parallel()

	r := NewEmptyReport(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`"documents_processed":0`,
		`"total_words":0`,
		`"unique_words":0`,
		`"top_100_words":[]`,
		`"document_similarity":[]`,
		`"top_bigrams":[]`,
		`"top_trigrams":[]`,
		`"readability":{"avg_sentence_length":0,"avg_word_length":0,"complexity_score":0}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}
