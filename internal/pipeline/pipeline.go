package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iidollbunny/docpipe/internal/coord"
	"github.com/iidollbunny/docpipe/internal/model"
)

// Stage is one unit of pipeline work.
type Stage interface {
	// Name identifies the stage.
	Name() model.Stage

	// Input is the path whose existence allows the stage to start.
	Input() string

	// Run does the stage's work and writes its outputs and marker.
	// A returned error means the marker was not written.
	Run(ctx context.Context) error
}

// Recorder receives finished stage runs.
type Recorder interface {
	RecordRun(ctx context.Context, run model.StageRun) (int64, error)
}

// Runner executes single stages under the coordination protocol.
type Runner struct {
	waiter   *coord.Waiter
	states   *coord.StateStore
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRecorder reports every finished run to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner creates a Runner that waits with waiter and records states in states.
func NewRunner(waiter *coord.Waiter, states *coord.StateStore, opts ...Option) *Runner {
	r := &Runner{
		waiter: waiter,
		states: states,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run waits for the stage's input, runs it and records the outcome.
//
// It returns coord.ErrStalled (wrapped) when the input never appeared,
// the context error on cancellation, and the stage's error on failure.
func (r *Runner) Run(ctx context.Context, stage Stage) error {
	name := stage.Name()
	started := r.now()

	if prev, err := r.states.Get(name); err == nil && prev.State == model.StateRunning {
		r.logger.Warn("stage was already marked running; a previous run may have crashed or another instance is active",
			"stage", name, "since", prev.UpdatedAt)
	}

	if err := r.states.Set(name, model.StatePending, "waiting for "+stage.Input()); err != nil {
		return err
	}

	if err := r.waiter.WaitFor(ctx, stage.Input()); err != nil {
		state := model.StateFailed
		if errors.Is(err, coord.ErrStalled) {
			state = model.StateStalled
		}
		r.logger.Error("stage did not start", "stage", name, "state", state, "error", err)
		return r.finish(ctx, name, started, state, err)
	}

	if err := r.states.Set(name, model.StateRunning, ""); err != nil {
		return err
	}
	r.logger.Info("stage running", "stage", name)

	if err := stage.Run(ctx); err != nil {
		r.logger.Error("stage failed", "stage", name, "error", err)
		return r.finish(ctx, name, started, model.StateFailed, err)
	}

	r.logger.Info("stage done", "stage", name, "elapsed", r.now().Sub(started).Round(time.Millisecond))
	return r.finish(ctx, name, started, model.StateDone, nil)
}

// finish records the final state and the run, and returns runErr.
func (r *Runner) finish(ctx context.Context, name model.Stage, started time.Time, state model.State, runErr error) error {
	detail := ""
	if runErr != nil {
		detail = runErr.Error()
	}

	if err := r.states.Set(name, state, detail); err != nil {
		if runErr != nil {
			return errors.Join(runErr, err)
		}
		return err
	}

	if r.recorder != nil {
		run := model.StageRun{
			Stage:      name,
			State:      state,
			StartedAt:  started.UTC(),
			FinishedAt: r.now().UTC(),
			Detail:     detail,
		}
		// History is best effort; it never decides a stage's outcome.
		if _, err := r.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
			r.logger.Warn("failed to record stage run", "stage", name, "error", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s stage %s: %w", name, state, runErr)
	}
	return nil
}

// Pipeline runs stages in order within one process.
type Pipeline struct {
	runner *Runner
	stages []Stage
	logger *slog.Logger
}

// New creates a Pipeline that runs stages with runner.
func New(runner *Runner, stages ...Stage) *Pipeline {
	return &Pipeline{runner: runner, stages: stages, logger: runner.logger}
}

// AddStage appends a stage. Stages run in the order they are added.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []model.Stage {
	names := make([]model.Stage, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Execute runs every stage in order and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "stage", stage.Name(), "reason", err)
			return err
		}
		if err := p.runner.Run(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}
