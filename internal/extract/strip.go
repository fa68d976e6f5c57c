package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Markup is the result of stripping one page.
type Markup struct {
	// Text is the markup-free text with whitespace runs collapsed and ends trimmed.
	Text string

	// Uncollapsed is the markup-free text before whitespace collapsing.
	// Paragraph boundaries (blank lines) survive only here.
	Uncollapsed string

	// Links are href attribute values in document order, duplicates kept.
	Links []string

	// Images are src attribute values in document order, duplicates kept.
	Images []string
}

// Strip removes all markup from page, replacing each tag with a space.
// Script and style elements are dropped along with their contents.
func Strip(page string) Markup {
	m := Markup{
		Links:  make([]string, 0),
		Images: make([]string, 0),
	}

	var b strings.Builder
	b.Grow(len(page))

	z := html.NewTokenizer(strings.NewReader(page))
	skip := ""
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF is the only error a string reader produces.
			m.Uncollapsed = b.String()
			m.Text = collapse(m.Uncollapsed)
			return m

		case html.TextToken:
			if skip == "" {
				b.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if hasAttr {
				m.collectAttrs(z)
			}
			if tt == html.StartTagToken && isSkipped(name) {
				skip = string(name)
			}
			b.WriteByte(' ')

		case html.EndTagToken:
			name, _ := z.TagName()
			if skip != "" && string(name) == skip {
				skip = ""
			}
			b.WriteByte(' ')

		case html.CommentToken, html.DoctypeToken:
			b.WriteByte(' ')
		}
	}
}

// collectAttrs appends href and src values of the current tag.
func (m *Markup) collectAttrs(z *html.Tokenizer) {
	for {
		key, val, more := z.TagAttr()
		switch {
		case bytes.Equal(key, []byte("href")):
			m.Links = append(m.Links, string(val))
		case bytes.Equal(key, []byte("src")):
			m.Images = append(m.Images, string(val))
		}
		if !more {
			return
		}
	}
}

func isSkipped(tag []byte) bool {
	return bytes.Equal(tag, []byte("script")) || bytes.Equal(tag, []byte("style"))
}

// collapse replaces every whitespace run with one space and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
