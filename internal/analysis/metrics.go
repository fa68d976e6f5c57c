package analysis

import (
	"cmp"
	"slices"
	"strings"

	"github.com/iidollbunny/docpipe/internal/model"
)

// TokenSet is the set of distinct tokens of one document.
type TokenSet map[string]struct{}

// NewTokenSet builds the distinct-token set of tokens.
func NewTokenSet(tokens []string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets score 0.
func Jaccard(a, b TokenSet) float64 {
	inter, union := overlap(a, b)
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// maxPartialSimilarity is the largest score a pair of different sets may
// report at six decimal places.
const maxPartialSimilarity = 0.999999

// Similarity returns Jaccard(a, b) rounded to six decimal places. Only
// identical non-empty sets score 1.
func Similarity(a, b TokenSet) float64 {
	return roundSimilarity(overlap(a, b))
}

func roundSimilarity(inter, union int) float64 {
	if union == 0 {
		return 0
	}
	v := model.Round(float64(inter)/float64(union), 6)
	if inter != union && v > maxPartialSimilarity {
		return maxPartialSimilarity
	}
	return v
}

// overlap returns the intersection and union sizes of a and b.
func overlap(a, b TokenSet) (inter, union int) {
	if len(a) > len(b) {
		a, b = b, a
	}
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return inter, len(a) + len(b) - inter
}

// NGrams returns the space-joined contiguous n-token windows of tokens.
func NGrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return []string{}
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

// termCount is one entry of a ranked table.
type termCount struct {
	term  string
	count int
}

// topK ranks counts by descending count then ascending term and keeps at most k.
func topK(counts map[string]int, k int) []termCount {
	ranked := make([]termCount, 0, len(counts))
	for term, c := range counts {
		ranked = append(ranked, termCount{term: term, count: c})
	}
	slices.SortFunc(ranked, func(a, b termCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.term, b.term)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
