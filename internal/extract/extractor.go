package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iidollbunny/docpipe/internal/model"
)

// Extract builds the document for one raw page artifact.
// Malformed markup never fails; an error means the result violated a
// document invariant.
func Extract(sourceFile string, raw []byte, processedAt time.Time) (*model.Document, error) {
	page := Decode(raw)
	m := Strip(page)
	stats := ComputeStatistics(m.Uncollapsed)
	return model.NewDocument(sourceFile, Title(page), m.Text, stats, m.Links, m.Images, processedAt)
}

// Title returns the collapsed text of the first <title> element, or "".
func Title(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return collapse(doc.Find("title").First().Text())
}
