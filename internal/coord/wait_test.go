package coord

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWaiter(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		w, err := NewWaiter()
		if err != nil {
			t.Fatalf("NewWaiter() error = %v", err)
		}
		if w.interval != DefaultPollInterval {
			t.Errorf("interval = %v, want %v", w.interval, DefaultPollInterval)
		}
		if w.timeout != DefaultWaitTimeout {
			t.Errorf("timeout = %v, want %v", w.timeout, DefaultWaitTimeout)
		}
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		t.Parallel()

		_, err := NewWaiter(WithPollInterval(0))
		if !errors.Is(err, ErrInvalidPollInterval) {
			t.Errorf("NewWaiter() error = %v, want ErrInvalidPollInterval", err)
		}
	})
}

func TestWaitFor(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately when file exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "marker.json")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}

		w, err := NewWaiter(WithPollInterval(time.Hour), WithWaitTimeout(time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WaitFor(context.Background(), path); err != nil {
			t.Errorf("WaitFor() error = %v", err)
		}
	})

	t.Run("observes file created later", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "marker.json")
		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = os.WriteFile(path, []byte("{}"), 0o600) //nolint:errcheck // test helper
		}()

		w, err := NewWaiter(WithPollInterval(10*time.Millisecond), WithWaitTimeout(5*time.Second))
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WaitFor(context.Background(), path); err != nil {
			t.Errorf("WaitFor() error = %v", err)
		}
	})

	t.Run("stalls after timeout", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "never.json")
		w, err := NewWaiter(WithPollInterval(10*time.Millisecond), WithWaitTimeout(60*time.Millisecond))
		if err != nil {
			t.Fatal(err)
		}

		err = w.WaitFor(context.Background(), path)
		if !errors.Is(err, ErrStalled) {
			t.Errorf("WaitFor() error = %v, want ErrStalled", err)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "never.json")
		w, err := NewWaiter(WithPollInterval(10*time.Millisecond), WithWaitTimeout(0))
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
		}()

		err = w.WaitFor(ctx, path)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitFor() error = %v, want context.Canceled", err)
		}
		if errors.Is(err, ErrStalled) {
			t.Error("cancellation must not be reported as a stall")
		}
	})
}
