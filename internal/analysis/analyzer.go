package analysis

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iidollbunny/docpipe/internal/model"
)

// Default table sizes.
const (
	DefaultTopWords  = 100
	DefaultTopNGrams = 50
)

// Input is one document as seen by the analyzer.
type Input struct {
	// Name identifies the document in similarity pairs.
	Name string

	// Text is the document's clean text.
	Text string

	// Sentences is the recorded sentence count. Zero triggers a recount.
	Sentences int
}

// Analyzer computes corpus reports.
type Analyzer struct {
	tokenizer *Tokenizer
	topWords  int
	topNGrams int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTopWords sets the size of the top-words table.
func WithTopWords(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.topWords = n
	}
}

// WithTopNGrams sets the size of the bigram and trigram tables.
func WithTopNGrams(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.topNGrams = n
	}
}

// NewAnalyzer creates an Analyzer that tokenizes with tokenizer.
func NewAnalyzer(tokenizer *Tokenizer, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		tokenizer: tokenizer,
		topWords:  DefaultTopWords,
		topNGrams: DefaultTopNGrams,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.topWords < 0 || a.topNGrams < 0 {
		return nil, fmt.Errorf("%w: top_words=%d top_ngrams=%d", ErrInvalidLimit, a.topWords, a.topNGrams)
	}
	return a, nil
}

// corpus accumulates global counts for one run.
type corpus struct {
	words    map[string]int
	bigrams  map[string]int
	trigrams map[string]int

	totalTokens int
	totalChars  int
	sentences   int
}

func newCorpus() *corpus {
	return &corpus{
		words:    make(map[string]int),
		bigrams:  make(map[string]int),
		trigrams: make(map[string]int),
	}
}

func (c *corpus) add(tokens []string, sentences int) {
	for _, t := range tokens {
		c.words[t]++
		c.totalChars += utf8.RuneCountInString(t)
	}
	for _, g := range NGrams(tokens, 2) {
		c.bigrams[g]++
	}
	for _, g := range NGrams(tokens, 3) {
		c.trigrams[g]++
	}
	c.totalTokens += len(tokens)
	c.sentences += sentences
}

// Analyze builds the report for docs. Documents are ordered by Name before
// pairing, so the result does not depend on the order of docs.
func (a *Analyzer) Analyze(docs []Input, now time.Time) (*model.Report, error) {
	report := model.NewEmptyReport(now)
	if len(docs) == 0 {
		return report, nil
	}

	docs = slices.Clone(docs)
	slices.SortFunc(docs, func(x, y Input) int { return strings.Compare(x.Name, y.Name) })

	c := newCorpus()
	sets := make([]TokenSet, len(docs))
	for i, d := range docs {
		tokens := a.tokenizer.Tokenize(d.Text)
		c.add(tokens, sentenceCount(d))
		sets[i] = NewTokenSet(tokens)
	}

	report.DocumentsProcessed = len(docs)
	report.TotalWords = c.totalTokens
	report.UniqueWords = len(c.words)

	for _, tc := range topK(c.words, a.topWords) {
		report.TopWords = append(report.TopWords, model.WordFrequency{
			Word:      tc.term,
			Count:     tc.count,
			Frequency: model.Round(float64(tc.count)/float64(c.totalTokens), 6),
		})
	}

	for i := range docs {
		for j := i + 1; j < len(docs); j++ {
			pair, err := model.NewSimilarityPair(docs[i].Name, docs[j].Name, Similarity(sets[i], sets[j]))
			if err != nil {
				return nil, err
			}
			report.DocumentSimilarity = append(report.DocumentSimilarity, pair)
		}
	}

	for _, tc := range topK(c.bigrams, a.topNGrams) {
		report.TopBigrams = append(report.TopBigrams, model.BigramCount{Bigram: tc.term, Count: tc.count})
	}
	for _, tc := range topK(c.trigrams, a.topNGrams) {
		report.TopTrigrams = append(report.TopTrigrams, model.TrigramCount{Trigram: tc.term, Count: tc.count})
	}

	report.Readability = readability(c)
	return report, nil
}

// sentenceCount returns the recorded count, or at least one sentence
// counted from terminal punctuation when none was recorded.
func sentenceCount(d Input) int {
	if d.Sentences > 0 {
		return d.Sentences
	}
	return max(1, strings.Count(d.Text, ".")+strings.Count(d.Text, "!")+strings.Count(d.Text, "?"))
}

func readability(c *corpus) model.Readability {
	var r model.Readability
	if c.sentences > 0 {
		r.AvgSentenceLength = model.Round(float64(c.totalTokens)/float64(c.sentences), 4)
	}
	if c.totalTokens > 0 {
		r.AvgWordLength = model.Round(float64(c.totalChars)/float64(c.totalTokens), 4)
		r.ComplexityScore = model.Round(float64(len(c.words))/float64(c.totalTokens), 4)
	}
	return r
}
