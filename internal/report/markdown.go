package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/iidollbunny/docpipe/internal/model"
)

// chartWords is how many of the top words the frequency chart shows.
const chartWords = 10

// MarkdownWriter outputs the report as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeReadability(md, report)
	w.writeTopWords(md, report)
	w.writeNGrams(md, report)
	w.writeSimilarity(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Corpus Analysis Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Processed At", report.ProcessingTimestamp.Format("2006-01-02 15:04:05 MST")},
			{"Documents", strconv.Itoa(report.DocumentsProcessed)},
			{"Total Words", strconv.Itoa(report.TotalWords)},
			{"Unique Words", strconv.Itoa(report.UniqueWords)},
		},
	})
	md.PlainText("")

	if report.DocumentsProcessed == 0 {
		md.Note("No documents were available for analysis.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeReadability(md *markdown.Markdown, report *model.Report) {
	md.H2("Readability")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Average Sentence Length", formatFloat(report.Readability.AvgSentenceLength)},
			{"Average Word Length", formatFloat(report.Readability.AvgWordLength)},
			{"Complexity Score", formatFloat(report.Readability.ComplexityScore)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTopWords(md *markdown.Markdown, report *model.Report) {
	md.H2("Top Words")
	md.PlainText("")

	if len(report.TopWords) == 0 {
		md.PlainText("No words found.")
		md.PlainText("")
		return
	}

	w.writeWordChart(md, report.TopWords)

	rows := make([][]string, len(report.TopWords))
	for i, wf := range report.TopWords {
		rows[i] = []string{strconv.Itoa(i + 1), wf.Word, strconv.Itoa(wf.Count), formatFloat(wf.Frequency)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count", "Frequency"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeWordChart writes a mermaid pie chart of the most frequent words.
func (w *MarkdownWriter) writeWordChart(md *markdown.Markdown, words []model.WordFrequency) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Most Frequent Words"),
		piechart.WithShowData(true),
	)
	for i, wf := range words {
		if i == chartWords {
			break
		}
		chart.LabelAndIntValue(wf.Word, uint64(wf.Count)) //nolint:gosec // counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeNGrams(md *markdown.Markdown, report *model.Report) {
	md.H2("Top Bigrams")
	md.PlainText("")
	if len(report.TopBigrams) == 0 {
		md.PlainText("No bigrams found.")
	} else {
		rows := make([][]string, len(report.TopBigrams))
		for i, b := range report.TopBigrams {
			rows[i] = []string{b.Bigram, strconv.Itoa(b.Count)}
		}
		md.Table(markdown.TableSet{Header: []string{"Bigram", "Count"}, Rows: rows})
	}
	md.PlainText("")

	md.H2("Top Trigrams")
	md.PlainText("")
	if len(report.TopTrigrams) == 0 {
		md.PlainText("No trigrams found.")
	} else {
		rows := make([][]string, len(report.TopTrigrams))
		for i, t := range report.TopTrigrams {
			rows[i] = []string{t.Trigram, strconv.Itoa(t.Count)}
		}
		md.Table(markdown.TableSet{Header: []string{"Trigram", "Count"}, Rows: rows})
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSimilarity(md *markdown.Markdown, report *model.Report) {
	md.H2("Document Similarity")
	md.PlainText("")

	if len(report.DocumentSimilarity) == 0 {
		md.PlainText("Fewer than two documents; no pairs to compare.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.DocumentSimilarity))
	for i, p := range report.DocumentSimilarity {
		rows[i] = []string{"`" + p.Doc1 + "`", "`" + p.Doc2 + "`", formatFloat(p.Similarity)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Document", "Document", "Jaccard"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by docpipe*")
}

// formatFloat formats v with the fewest digits that round-trip.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
