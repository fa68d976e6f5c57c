package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/report"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// Stage is the analysis pipeline stage.
type Stage struct {
	layout   *storage.Layout
	analyzer *Analyzer
	markdown bool
	logger   *slog.Logger
	now      func() time.Time
}

// StageOption configures a Stage.
type StageOption func(*Stage)

// WithMarkdown also writes a Markdown rendition of the report.
func WithMarkdown(enabled bool) StageOption {
	return func(s *Stage) {
		s.markdown = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StageOption {
	return func(s *Stage) {
		s.logger = logger
	}
}

// NewStage creates the analysis stage.
func NewStage(layout *storage.Layout, analyzer *Analyzer, opts ...StageOption) *Stage {
	s := &Stage{
		layout:   layout,
		analyzer: analyzer,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns model.StageAnalyze.
func (s *Stage) Name() model.Stage {
	return model.StageAnalyze
}

// Input returns the process marker path.
func (s *Stage) Input() string {
	return s.layout.MarkerPath(model.StageProcess)
}

// Run analyzes the documents present in processed/ and writes the report,
// then the completion marker.
func (s *Stage) Run(ctx context.Context) error {
	if err := s.layout.EnsureDirs(storage.AnalysisDir, storage.StatusDir); err != nil {
		return err
	}

	inputs, err := s.loadInputs(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("analyze stage started", "documents", len(inputs))

	rep, err := s.analyzer.Analyze(inputs, s.now())
	if err != nil {
		return fmt.Errorf("failed to analyze corpus: %w", err)
	}

	if err := storage.WriteJSON(s.layout.ReportPath(), rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if s.markdown {
		var buf bytes.Buffer
		if _, err := report.NewMarkdownWriter(&buf).Write(rep); err != nil {
			return fmt.Errorf("failed to render markdown report: %w", err)
		}
		if err := storage.WriteFile(s.layout.ReportMarkdownPath(), buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
	}

	if err := storage.WriteJSON(s.layout.MarkerPath(model.StageAnalyze), model.NewAnalyzeMarker(s.now())); err != nil {
		return fmt.Errorf("failed to write analyze marker: %w", err)
	}

	s.logger.Info("analyze stage completed",
		"documents", rep.DocumentsProcessed,
		"total_words", rep.TotalWords,
		"unique_words", rep.UniqueWords,
		"pairs", len(rep.DocumentSimilarity),
	)
	return nil
}

// loadInputs reads the processed documents present now, in name order.
// Documents that cannot be read or decoded are logged and skipped.
func (s *Stage) loadInputs(ctx context.Context) ([]Input, error) {
	names, err := s.layout.ListProcessed()
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var doc model.Document
		if err := storage.ReadJSON(s.layout.ProcessedDocument(name), &doc); err != nil {
			s.logger.Error("skipping unreadable document", "file", name, "error", err)
			continue
		}
		inputs = append(inputs, Input{
			Name:      name,
			Text:      doc.Text,
			Sentences: doc.Statistics.SentenceCount,
		})
	}
	return inputs, nil
}
