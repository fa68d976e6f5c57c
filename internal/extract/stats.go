package extract

import (
	"regexp"
	"strings"

	"github.com/iidollbunny/docpipe/internal/model"
)

var (
	// wordPattern matches an alphabetic word with at most one embedded apostrophe.
	wordPattern = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
)

// ComputeStatistics derives document statistics from markup-free text.
//
// Paragraphs are blank-line separated blocks, so text should not have had its
// whitespace collapsed. Word and sentence counts are unaffected by collapsing.
func ComputeStatistics(text string) model.Statistics {
	words := wordPattern.FindAllString(text, -1)

	chars := 0
	for _, w := range words {
		chars += len(w)
	}

	stats := model.Statistics{
		WordCount:      len(words),
		SentenceCount:  CountSentences(text),
		ParagraphCount: max(countNonBlank(paragraphSplit.Split(text, -1)), 1),
	}
	if len(words) > 0 {
		stats.AvgWordLength = model.Round(float64(chars)/float64(len(words)), 4)
	}
	return stats
}

// CountSentences counts the non-empty segments between runs of '.', '!' and '?'.
func CountSentences(text string) int {
	return countNonBlank(sentenceSplit.Split(text, -1))
}

func countNonBlank(parts []string) int {
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
