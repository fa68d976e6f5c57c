package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/iidollbunny/docpipe/internal/model"
)

// SimpleWriter outputs a plain-text summary for terminals.
type SimpleWriter struct {
	baseWriter

	// limit caps the rows shown per table; 0 shows all.
	limit int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLimit caps the rows shown per table. Zero shows every row.
func WithLimit(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.limit = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to output.
// By default each table shows at most 10 rows.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		limit:      10,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeReadability(&sb, report)
	w.writeTopWords(&sb, report)
	w.writeNGrams(&sb, report)
	w.writeSimilarity(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     CORPUS ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Processed At:   %s\n", report.ProcessingTimestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Documents:      %d\n", report.DocumentsProcessed)
	fmt.Fprintf(sb, "Total Words:    %d\n", report.TotalWords)
	fmt.Fprintf(sb, "Unique Words:   %d\n", report.UniqueWords)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeReadability(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "READABILITY")
	fmt.Fprintf(sb, "  Avg sentence length:  %.4f\n", report.Readability.AvgSentenceLength)
	fmt.Fprintf(sb, "  Avg word length:      %.4f\n", report.Readability.AvgWordLength)
	fmt.Fprintf(sb, "  Complexity score:     %.4f\n", report.Readability.ComplexityScore)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTopWords(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "TOP WORDS")
	if len(report.TopWords) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for i, wf := range report.TopWords[:w.rows(len(report.TopWords))] {
		fmt.Fprintf(sb, "  %3d. %-24s %6d  %.6f\n", i+1, wf.Word, wf.Count, wf.Frequency)
	}
	w.writeMore(sb, len(report.TopWords))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeNGrams(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "TOP BIGRAMS")
	if len(report.TopBigrams) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, b := range report.TopBigrams[:w.rows(len(report.TopBigrams))] {
		fmt.Fprintf(sb, "  %-40s %6d\n", b.Bigram, b.Count)
	}
	w.writeMore(sb, len(report.TopBigrams))
	sb.WriteString("\n")

	writeSection(sb, "TOP TRIGRAMS")
	if len(report.TopTrigrams) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, t := range report.TopTrigrams[:w.rows(len(report.TopTrigrams))] {
		fmt.Fprintf(sb, "  %-40s %6d\n", t.Trigram, t.Count)
	}
	w.writeMore(sb, len(report.TopTrigrams))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSimilarity(sb *strings.Builder, report *model.Report) {
	writeSection(sb, "DOCUMENT SIMILARITY")
	if len(report.DocumentSimilarity) == 0 {
		sb.WriteString("  (no pairs)\n\n")
		return
	}
	for _, p := range report.DocumentSimilarity[:w.rows(len(report.DocumentSimilarity))] {
		fmt.Fprintf(sb, "  %s <-> %s: %.6f\n", p.Doc1, p.Doc2, p.Similarity)
	}
	w.writeMore(sb, len(report.DocumentSimilarity))
	sb.WriteString("\n")
}

// rows returns how many of n rows to show.
func (w *SimpleWriter) rows(n int) int {
	if w.limit > 0 && n > w.limit {
		return w.limit
	}
	return n
}

func (w *SimpleWriter) writeMore(sb *strings.Builder, n int) {
	if shown := w.rows(n); shown < n {
		fmt.Fprintf(sb, "  ... and %d more\n", n-shown)
	}
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", len(title)))
	sb.WriteString("\n")
}
