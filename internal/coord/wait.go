package coord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Default polling parameters.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultWaitTimeout  = 30 * time.Minute
)

// Waiter polls for files to appear in the shared area.
type Waiter struct {
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// WaiterOption configures a Waiter.
type WaiterOption func(*Waiter)

// WithPollInterval sets how often the file system is checked.
func WithPollInterval(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		w.interval = d
	}
}

// WithWaitTimeout sets the maximum wait. Zero disables the bound.
func WithWaitTimeout(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		w.timeout = d
	}
}

// WithLogger sets the logger for wait progress.
func WithLogger(logger *slog.Logger) WaiterOption {
	return func(w *Waiter) {
		w.logger = logger
	}
}

// NewWaiter creates a Waiter with the given options.
func NewWaiter(opts ...WaiterOption) (*Waiter, error) {
	w := &Waiter{
		interval: DefaultPollInterval,
		timeout:  DefaultWaitTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPollInterval, w.interval)
	}
	if w.timeout < 0 {
		w.timeout = 0
	}
	return w, nil
}

// WaitFor blocks until path exists, the timeout elapses, or ctx is done.
// It returns ErrStalled on timeout and ctx.Err() on cancellation.
func (w *Waiter) WaitFor(ctx context.Context, path string) error {
	if exists(path) {
		return nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, w.timeout, ErrStalled)
		defer cancel()
	}

	w.logger.Info("waiting for file", "path", path, "poll_interval", w.interval, "timeout", w.timeout)
	start := time.Now()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), ErrStalled) {
				return fmt.Errorf("%w: %s after %s", ErrStalled, path, w.timeout)
			}
			return ctx.Err()
		case <-ticker.C:
			if exists(path) {
				w.logger.Debug("file appeared", "path", path, "waited", time.Since(start).Round(time.Millisecond))
				return nil
			}
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
