package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// Stage is the fetch pipeline stage.
type Stage struct {
	layout      *storage.Layout
	fetcher     *Fetcher
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// StageOption configures a Stage.
type StageOption func(*Stage)

// WithConcurrency sets how many URLs are fetched at the same time.
// Values below 1 are treated as 1.
func WithConcurrency(n int) StageOption {
	return func(s *Stage) {
		s.concurrency = n
	}
}

// WithStageLogger sets the logger.
func WithStageLogger(logger *slog.Logger) StageOption {
	return func(s *Stage) {
		s.logger = logger
	}
}

// NewStage creates the fetch stage.
func NewStage(layout *storage.Layout, fetcher *Fetcher, opts ...StageOption) *Stage {
	s := &Stage{
		layout:      layout,
		fetcher:     fetcher,
		concurrency: 1,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Name returns model.StageFetch.
func (s *Stage) Name() model.Stage {
	return model.StageFetch
}

// Input returns the file this stage waits for before running.
func (s *Stage) Input() string {
	return s.layout.InputFile()
}

// Run fetches every URL of the input list and writes the completion marker.
//
// Individual fetch failures are recorded, not returned. An error is returned
// only when the input cannot be read, an artifact or the marker cannot be
// written, or ctx is cancelled.
func (s *Stage) Run(ctx context.Context) error {
	urls, err := s.layout.ReadURLList()
	if err != nil {
		return err
	}
	if err := s.layout.EnsureDirs(storage.RawDir, storage.StatusDir); err != nil {
		return err
	}

	s.logger.Info("fetch stage started", "urls", len(urls), "concurrency", s.concurrency)

	results := make([]model.FetchResult, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			r, err := s.fetchOne(gctx, i+1, u)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.pruneStale(results); err != nil {
		return err
	}

	marker := model.NewFetchMarker(results, s.now())
	if err := s.writeErrorLog(results); err != nil {
		return err
	}
	if err := storage.WriteJSON(s.layout.MarkerPath(model.StageFetch), marker); err != nil {
		return fmt.Errorf("failed to write fetch marker: %w", err)
	}

	s.logger.Info("fetch stage completed",
		"urls_processed", marker.URLsProcessed,
		"successful", marker.Successful,
		"failed", marker.Failed,
	)
	return nil
}

// fetchOne fetches the URL at 1-based position index and writes its artifact.
func (s *Stage) fetchOne(ctx context.Context, index int, rawURL string) (model.FetchResult, error) {
	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if ctx.Err() != nil {
		return model.FetchResult{}, ctx.Err()
	}
	if err != nil {
		s.logger.Error("fetch failed", "url", rawURL, "attempts", resp.Attempts, "error", err)
		return model.NewFailedResult(rawURL, err, resp.StatusCode, resp.Attempts, resp.Elapsed), nil
	}

	name := storage.RawPageName(index)
	if err := storage.WriteFile(s.layout.RawPage(name), resp.Body); err != nil {
		return model.FetchResult{}, fmt.Errorf("failed to write raw page %s: %w", name, err)
	}

	s.logger.Info("fetched", "url", rawURL, "file", name, "bytes", len(resp.Body), "status", resp.StatusCode)
	return model.NewSuccessResult(rawURL, name, int64(len(resp.Body)), resp.StatusCode, resp.Attempts, resp.Elapsed), nil
}

// pruneStale removes raw pages left by an earlier run that no successful
// result of this run backs.
func (s *Stage) pruneStale(results []model.FetchResult) error {
	keep := make([]string, 0, len(results))
	for _, r := range results {
		if r.Status == model.FetchSuccess && r.File != nil {
			keep = append(keep, *r.File)
		}
	}
	removed, err := s.layout.PruneRawPages(keep)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		s.logger.Info("removed stale raw pages", "files", removed)
	}
	return nil
}

// writeErrorLog writes one "[timestamp] [url]: error" line per failed URL.
func (s *Stage) writeErrorLog(results []model.FetchResult) error {
	var b strings.Builder
	ts := s.now().UTC().Format(time.RFC3339)
	for _, r := range results {
		if r.Status != model.FetchFailed || r.Error == nil {
			continue
		}
		fmt.Fprintf(&b, "[%s] [%s]: %s\n", ts, r.URL, *r.Error)
	}
	if err := storage.WriteFile(s.layout.FetchErrorsPath(), []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write fetch error log: %w", err)
	}
	return nil
}
