package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/analysis"
	"github.com/iidollbunny/docpipe/internal/config"
	"github.com/iidollbunny/docpipe/internal/coord"
	"github.com/iidollbunny/docpipe/internal/database"
	"github.com/iidollbunny/docpipe/internal/extract"
	"github.com/iidollbunny/docpipe/internal/fetch"
	dlog "github.com/iidollbunny/docpipe/internal/log"
	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/pipeline"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// app bundles what every command needs after flag parsing.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	layout  *storage.Layout
	history *database.HistoryDB
}

// newApp builds the configuration from defaults, the config file and flags,
// sets up logging, and opens the run history when enabled.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, cfgPath, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	if cfgPath != "" {
		logger.Debug("loaded configuration file", "path", cfgPath)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		layout: storage.NewLayout(cfg.Root),
	}

	if cfg.HistoryEnabled {
		db, err := database.Open(cfg.HistoryDir, database.DefaultOptions())
		if err != nil {
			// History is an operator convenience; the pipeline runs without it.
			logger.Warn("run history unavailable", "dir", cfg.HistoryDir, "error", err)
		} else {
			a.history = db
		}
	}
	return a, nil
}

// Close releases the history database.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history database", "error", err)
		}
	}
}

func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return dlog.NewJSONLogger(w, cfg.Verbose)
	}
	return dlog.NewLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runner builds the coordination runner shared by all stages.
func (a *app) runner() (*pipeline.Runner, error) {
	waiter, err := coord.NewWaiter(
		coord.WithPollInterval(a.cfg.PollInterval),
		coord.WithWaitTimeout(a.cfg.WaitTimeout),
		coord.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(a.logger)}
	if a.history != nil {
		opts = append(opts, pipeline.WithRecorder(a.history))
	}
	return pipeline.NewRunner(waiter, coord.NewStateStore(a.layout), opts...), nil
}

// stage builds the named stage from the configuration.
func (a *app) stage(name model.Stage) (pipeline.Stage, error) {
	var (
		s   pipeline.Stage
		err error
	)
	switch name {
	case model.StageFetch:
		s, err = a.fetchStage()
	case model.StageProcess:
		s = extract.NewStage(a.layout, extract.WithLogger(a.logger))
	case model.StageAnalyze:
		s, err = a.analyzeStage()
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStage, name)
	}
	if err != nil {
		return nil, err
	}
	if a.history == nil {
		return s, nil
	}
	return &archivingStage{Stage: s, app: a}, nil
}

func (a *app) fetchStage() (pipeline.Stage, error) {
	client, err := fetch.NewHTTPClient(a.cfg.Timeout, a.cfg.ProxyAddress)
	if err != nil {
		return nil, err
	}
	fetcher, err := fetch.NewFetcher(client,
		fetch.WithUserAgent(a.cfg.UserAgent),
		fetch.WithMaxAttempts(a.cfg.MaxAttempts),
		fetch.WithRetryDelay(a.cfg.RetryDelay),
		fetch.WithMaxBodySize(a.cfg.MaxBodySize),
		fetch.WithRateLimit(a.cfg.RateLimit),
		fetch.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	return fetch.NewStage(a.layout, fetcher,
		fetch.WithConcurrency(a.cfg.Concurrency),
		fetch.WithStageLogger(a.logger),
	), nil
}

func (a *app) analyzeStage() (pipeline.Stage, error) {
	stopwords := a.cfg.Stopwords
	if stopwords == nil {
		stopwords = analysis.DefaultStopwords
	}
	tokenizer, err := analysis.NewTokenizer(a.cfg.TokenPattern, stopwords)
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.NewAnalyzer(tokenizer,
		analysis.WithTopWords(a.cfg.TopWords),
		analysis.WithTopNGrams(a.cfg.TopNGrams),
	)
	if err != nil {
		return nil, err
	}
	return analysis.NewStage(a.layout, analyzer,
		analysis.WithMarkdown(a.cfg.Markdown),
		analysis.WithLogger(a.logger),
	), nil
}

// runStages runs the named stages in order under the coordination protocol.
func (a *app) runStages(ctx context.Context, names ...model.Stage) error {
	runner, err := a.runner()
	if err != nil {
		return err
	}

	p := pipeline.New(runner)
	for _, name := range names {
		s, err := a.stage(name)
		if err != nil {
			return err
		}
		p.AddStage(s)
	}

	err = p.Execute(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("interrupted")
	}
	return err
}

// archivingStage copies a stage's results into the run history after it succeeds.
type archivingStage struct {
	pipeline.Stage
	app *app
}

// Run runs the wrapped stage, then archives its outputs. Archiving failures
// are logged and never fail the stage.
func (s *archivingStage) Run(ctx context.Context) error {
	if err := s.Stage.Run(ctx); err != nil {
		return err
	}
	if err := s.app.archive(context.WithoutCancel(ctx), s.Name()); err != nil {
		s.app.logger.Warn("failed to archive stage output", "stage", s.Name(), "error", err)
	}
	return nil
}

func (a *app) archive(ctx context.Context, name model.Stage) error {
	switch name {
	case model.StageFetch:
		var marker model.FetchMarker
		if err := storage.ReadJSON(a.layout.MarkerPath(model.StageFetch), &marker); err != nil {
			return err
		}
		return a.history.SaveFetchMarker(ctx, &marker)
	case model.StageAnalyze:
		var report model.Report
		if err := storage.ReadJSON(a.layout.ReportPath(), &report); err != nil {
			return err
		}
		id, err := a.history.SaveReport(ctx, &report)
		if err != nil {
			return err
		}
		a.logger.Debug("archived report", "id", id)
	}
	return nil
}
