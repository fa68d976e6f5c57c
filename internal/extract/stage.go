package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// Stage is the extraction pipeline stage.
type Stage struct {
	layout *storage.Layout
	logger *slog.Logger
	now    func() time.Time
}

// StageOption configures a Stage.
type StageOption func(*Stage)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StageOption {
	return func(s *Stage) {
		s.logger = logger
	}
}

// NewStage creates the extraction stage.
func NewStage(layout *storage.Layout, opts ...StageOption) *Stage {
	s := &Stage{
		layout: layout,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns model.StageProcess.
func (s *Stage) Name() model.Stage {
	return model.StageProcess
}

// Input returns the fetch marker path.
func (s *Stage) Input() string {
	return s.layout.MarkerPath(model.StageFetch)
}

// Run extracts every raw page present and writes the completion marker.
// Unreadable raw files are logged and skipped.
func (s *Stage) Run(ctx context.Context) error {
	if err := s.layout.EnsureDirs(storage.ProcessedDir, storage.StatusDir); err != nil {
		return err
	}

	pages, err := s.layout.ListRawPages()
	if err != nil {
		return err
	}
	s.logger.Info("process stage started", "raw_pages", len(pages))

	processed := make([]string, 0, len(pages))
	for _, name := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := os.ReadFile(s.layout.RawPage(name))
		if err != nil {
			s.logger.Error("skipping unreadable raw page", "file", name, "error", err)
			continue
		}

		doc, err := Extract(name, raw, s.now())
		if err != nil {
			s.logger.Error("skipping raw page", "file", name, "error", err)
			continue
		}

		out := storage.ProcessedName(name)
		if err := storage.WriteJSON(s.layout.ProcessedDocument(out), doc); err != nil {
			return fmt.Errorf("failed to write document %s: %w", out, err)
		}
		s.logger.Debug("processed", "file", name, "words", doc.Statistics.WordCount,
			"links", len(doc.Links), "images", len(doc.Images))
		processed = append(processed, name)
	}

	keep := make([]string, len(processed))
	for i, name := range processed {
		keep[i] = storage.ProcessedName(name)
	}
	removed, err := s.layout.PruneProcessed(keep)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		s.logger.Info("removed stale documents", "files", removed)
	}

	marker := model.NewProcessMarker(processed, s.now())
	if err := storage.WriteJSON(s.layout.MarkerPath(model.StageProcess), marker); err != nil {
		return fmt.Errorf("failed to write process marker: %w", err)
	}

	s.logger.Info("process stage completed", "files", len(processed), "skipped", len(pages)-len(processed))
	return nil
}
