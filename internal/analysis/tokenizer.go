package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTokenPattern matches lowercase alphabetic words; a single embedded
// apostrophe keeps a contraction together.
const DefaultTokenPattern = `[a-z]+(?:'[a-z]+)?`

// DefaultStopwords is the stopword set removed before counting.
var DefaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "have", "in", "is", "it", "its", "of", "on", "or", "that",
	"the", "this", "to", "was", "were", "will", "with",
}

// Tokenizer turns text into a sequence of lowercase, stopword-filtered tokens.
// It is safe for concurrent use.
type Tokenizer struct {
	pattern   *regexp.Regexp
	stopwords map[string]struct{}
}

// NewTokenizer creates a Tokenizer. An empty pattern selects
// DefaultTokenPattern; a nil or empty stopword list removes nothing.
func NewTokenizer(pattern string, stopwords []string) (*Tokenizer, error) {
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.TrimSpace(w)
		if w != "" {
			set[cases.Lower(language.Und).String(w)] = struct{}{}
		}
	}
	return &Tokenizer{pattern: re, stopwords: set}, nil
}

// DefaultTokenizer returns a Tokenizer with DefaultTokenPattern and DefaultStopwords.
func DefaultTokenizer() *Tokenizer {
	t, err := NewTokenizer(DefaultTokenPattern, DefaultStopwords)
	if err != nil {
		panic(err)
	}
	return t
}

// Tokenize lowercases text and returns the matching tokens in order,
// with stopwords removed.
func (t *Tokenizer) Tokenize(text string) []string {
	lower := cases.Lower(language.Und).String(text)
	matches := t.pattern.FindAllString(lower, -1)

	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if !t.IsStopword(m) {
			tokens = append(tokens, m)
		}
	}
	return tokens
}

// IsStopword reports whether w is in the stopword set.
func (t *Tokenizer) IsStopword(w string) bool {
	_, ok := t.stopwords[w]
	return ok
}
