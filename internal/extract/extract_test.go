package extract

import (
	"context"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

func TestStrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       string
		wantText   string
		wantLinks  []string
		wantImages []string
	}{
		{
			name:       "tags become spaces",
			page:       "<p>Hello</p><p>world</p>",
			wantText:   "Hello world",
			wantLinks:  []string{},
			wantImages: []string{},
		},
		{
			name:       "script and style contents removed",
			page:       `<style>p{color:red}</style><script type="text/javascript">var x = "<p>no</p>";</script><b>kept</b>`,
			wantText:   "kept",
			wantLinks:  []string{},
			wantImages: []string{},
		},
		{
			name:       "entities decoded after tag removal",
			page:       "<p>fish &amp; chips &lt;b&gt;</p>",
			wantText:   "fish & chips <b>",
			wantLinks:  []string{},
			wantImages: []string{},
		},
		{
			name:       "links and images in document order with duplicates",
			page:       `<a href="/a">A</a><img src="x.png"><link href="/a"><script src="app.js"></script><img src="x.png"/>`,
			wantText:   "A",
			wantLinks:  []string{"/a", "/a"},
			wantImages: []string{"x.png", "app.js", "x.png"},
		},
		{
			name:       "malformed markup tolerated",
			page:       "<div><p>unclosed <b>bold <i>text",
			wantText:   "unclosed bold text",
			wantLinks:  []string{},
			wantImages: []string{},
		},
		{
			name:       "comments and doctype removed",
			page:       "<!DOCTYPE html><!-- hidden -->visible",
			wantText:   "visible",
			wantLinks:  []string{},
			wantImages: []string{},
		},
		{
			name:       "empty page",
			page:       "",
			wantText:   "",
			wantLinks:  []string{},
			wantImages: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Strip(tt.page)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if !reflect.DeepEqual(got.Links, tt.wantLinks) {
				t.Errorf("Links = %v, want %v", got.Links, tt.wantLinks)
			}
			if !reflect.DeepEqual(got.Images, tt.wantImages) {
				t.Errorf("Images = %v, want %v", got.Images, tt.wantImages)
			}
		})
	}
}

func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want model.Statistics
	}{
		{
			name: "two sentences",
			text: "Cats run. Dogs run fast!",
			want: model.Statistics{WordCount: 5, SentenceCount: 2, ParagraphCount: 1, AvgWordLength: 3.6},
		},
		{
			name: "contraction counts once",
			text: "Don't stop",
			want: model.Statistics{WordCount: 2, SentenceCount: 1, ParagraphCount: 1, AvgWordLength: 4.5},
		},
		{
			name: "blank lines separate paragraphs",
			text: "First block.\n\n  \nSecond block.\n\nThird",
			want: model.Statistics{WordCount: 5, SentenceCount: 3, ParagraphCount: 3, AvgWordLength: 5.2},
		},
		{
			name: "punctuation runs",
			text: "Wait... what?! Yes",
			want: model.Statistics{WordCount: 3, SentenceCount: 3, ParagraphCount: 1, AvgWordLength: 3.6667},
		},
		{
			name: "no words",
			text: "  123 ... ",
			want: model.Statistics{WordCount: 0, SentenceCount: 1, ParagraphCount: 1, AvgWordLength: 0},
		},
		{
			name: "empty",
			text: "",
			want: model.Statistics{WordCount: 0, SentenceCount: 0, ParagraphCount: 1, AvgWordLength: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeStatistics(tt.text)
			if got != tt.want {
				t.Errorf("ComputeStatistics(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("drops invalid utf-8", func(t *testing.T) {
		t.Parallel()

		raw := append([]byte("<meta charset=\"utf-8\"><p>ok"), 0xff, 0xfe)
		raw = append(raw, []byte("done</p>")...)
		got := Decode(raw)
		if got != "<meta charset=\"utf-8\"><p>okdone</p>" {
			t.Errorf("Decode() = %q", got)
		}
	})

	t.Run("honours declared charset", func(t *testing.T) {
		t.Parallel()

		// 0xe9 is "é" in ISO-8859-1.
		raw := append([]byte(`<meta charset="iso-8859-1"><p>caf`), 0xe9, '<', '/', 'p', '>')
		got := Decode(raw)
		if got != `<meta charset="iso-8859-1"><p>café</p>` {
			t.Errorf("Decode() = %q", got)
		}
	})

	t.Run("undeclared non-utf-8 bytes are dropped", func(t *testing.T) {
		t.Parallel()

		raw := append([]byte("<p>caf"), 0xe9, ' ', 'o', 'k', '<', '/', 'p', '>')
		if got := Decode(raw); got != "<p>caf ok</p>" {
			t.Errorf("Decode() = %q, want %q", got, "<p>caf ok</p>")
		}
	})

	t.Run("keeps valid utf-8", func(t *testing.T) {
		t.Parallel()

		if got := Decode([]byte("<p>naïve</p>")); got != "<p>naïve</p>" {
			t.Errorf("Decode() = %q", got)
		}
	})
}

func TestExtract(t *testing.T) {
	t.Parallel()

	page := `<html><head><title> Sample
	Page </title><script>ignored()</script></head><body><p>First paragraph here.</p>

<p>Second <a href="https://example.com/x">link</a> one!</p><img src="/img/a.png"></body></html>`

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc, err := Extract("page_1.html", []byte(page), now)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if doc.Title != "Sample Page" {
		t.Errorf("Title = %q, want %q", doc.Title, "Sample Page")
	}
	if doc.Text != "Sample Page First paragraph here. Second link one!" {
		t.Errorf("Text = %q", doc.Text)
	}
	if doc.Statistics.ParagraphCount != 2 {
		t.Errorf("ParagraphCount = %d, want 2", doc.Statistics.ParagraphCount)
	}
	if doc.Statistics.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", doc.Statistics.WordCount)
	}
	if !reflect.DeepEqual(doc.Links, []string{"https://example.com/x"}) {
		t.Errorf("Links = %v", doc.Links)
	}
	if !reflect.DeepEqual(doc.Images, []string{"/img/a.png"}) {
		t.Errorf("Images = %v", doc.Images)
	}
	if !doc.ProcessedAt.Equal(now) {
		t.Errorf("ProcessedAt = %v, want %v", doc.ProcessedAt, now)
	}
}

func TestStageRun(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("processes raw pages in name order", func(t *testing.T) {
		t.Parallel()

		layout := storage.NewLayout(t.TempDir())
		pages := map[string]string{
			"page_1.html": "<p>one</p>",
			"page_2.html": "<p>two <a href='/b'>b</a></p>",
		}
		for name, body := range pages {
			if err := storage.WriteFile(layout.RawPage(name), []byte(body)); err != nil {
				t.Fatal(err)
			}
		}

		if err := NewStage(layout, WithLogger(logger)).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		var marker model.ProcessMarker
		if err := storage.ReadJSON(layout.MarkerPath(model.StageProcess), &marker); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(marker.Files, []string{"page_1.html", "page_2.html"}) {
			t.Errorf("marker.Files = %v", marker.Files)
		}

		var doc model.Document
		if err := storage.ReadJSON(layout.ProcessedDocument("page_2.json"), &doc); err != nil {
			t.Fatal(err)
		}
		if doc.SourceFile != "page_2.html" || doc.Text != "two b" {
			t.Errorf("doc = %+v", doc)
		}
		if !reflect.DeepEqual(doc.Links, []string{"/b"}) {
			t.Errorf("Links = %v", doc.Links)
		}
	})

	t.Run("no raw pages writes empty marker", func(t *testing.T) {
		t.Parallel()

		layout := storage.NewLayout(t.TempDir())
		if err := NewStage(layout, WithLogger(logger)).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		var marker model.ProcessMarker
		if err := storage.ReadJSON(layout.MarkerPath(model.StageProcess), &marker); err != nil {
			t.Fatal(err)
		}
		if marker.Files == nil || len(marker.Files) != 0 {
			t.Errorf("marker.Files = %#v, want empty", marker.Files)
		}
	})

	t.Run("rerun removes documents of vanished raw pages", func(t *testing.T) {
		t.Parallel()

		layout := storage.NewLayout(t.TempDir())
		for _, name := range []string{"page_1.html", "page_2.html"} {
			if err := storage.WriteFile(layout.RawPage(name), []byte("<p>"+name+"</p>")); err != nil {
				t.Fatal(err)
			}
		}
		stage := NewStage(layout, WithLogger(logger))
		if err := stage.Run(context.Background()); err != nil {
			t.Fatalf("first Run() error = %v", err)
		}

		if err := os.Remove(layout.RawPage("page_1.html")); err != nil {
			t.Fatal(err)
		}
		if err := stage.Run(context.Background()); err != nil {
			t.Fatalf("second Run() error = %v", err)
		}

		var marker model.ProcessMarker
		if err := storage.ReadJSON(layout.MarkerPath(model.StageProcess), &marker); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(marker.Files, []string{"page_2.html"}) {
			t.Errorf("marker.Files = %v, want [page_2.html]", marker.Files)
		}
		got, err := layout.ListProcessed()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, []string{"page_2.json"}) {
			t.Errorf("processed = %v, want [page_2.json]", got)
		}
	})

	t.Run("unreadable page is skipped", func(t *testing.T) {
		t.Parallel()

		layout := storage.NewLayout(t.TempDir())
		if err := storage.WriteFile(layout.RawPage("page_1.html"), []byte("<p>ok</p>")); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(layout.RawPage("page_2.html"), []byte("x"), 0o000); err != nil {
			t.Fatal(err)
		}

		if err := NewStage(layout, WithLogger(logger)).Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !storage.Exists(layout.ProcessedDocument("page_1.json")) {
			t.Error("readable page should be processed")
		}
		// root ignores file permissions
		if os.Geteuid() != 0 {
			var marker model.ProcessMarker
			if err := storage.ReadJSON(layout.MarkerPath(model.StageProcess), &marker); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(marker.Files, []string{"page_1.html"}) {
				t.Errorf("marker.Files = %v, want only page_1.html", marker.Files)
			}
		}
	})
}
