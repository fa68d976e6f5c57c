package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default fetch parameters.
const (
	DefaultTimeout     = 20 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 1500 * time.Millisecond
	DefaultUserAgent   = "Mozilla/5.0 (compatible; docpipe/1.0)"
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Fetcher downloads single URLs with retries.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	retryDelay  time.Duration
	maxBodySize int64
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxAttempts sets the number of attempts per URL.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		f.maxAttempts = n
	}
}

// WithRetryDelay sets the pause between failed attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDelay = d
	}
}

// WithMaxBodySize caps how many bytes of a response body are kept.
// Zero keeps the whole body.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithRateLimit limits request starts to perSecond across all goroutines
// sharing the Fetcher. Zero or negative disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher that issues requests with client.
func NewFetcher(client *http.Client, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxAttempts < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAttempts, f.maxAttempts)
	}
	return f, nil
}

// Response is the outcome of fetching one URL.
type Response struct {
	// Body holds the raw response bytes of the successful attempt.
	Body []byte

	// StatusCode is the status of the last response received, 0 if none.
	StatusCode int

	// Attempts is the number of attempts made.
	Attempts int

	// Elapsed is the wall time across all attempts and delays.
	Elapsed time.Duration
}

// Fetch downloads rawURL, retrying on any error up to the attempt limit.
//
// The returned Response is populated even on failure. The error is the last
// attempt's error, or the context error if ctx ended first.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	start := time.Now()
	resp := &Response{}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				resp.Elapsed = time.Since(start)
				return resp, err
			}
		}

		resp.Attempts = attempt
		f.logger.Debug("fetching", "url", rawURL, "attempt", attempt, "max_attempts", f.maxAttempts)

		body, code, err := f.get(ctx, rawURL)
		if code != 0 {
			resp.StatusCode = code
		}
		if err == nil {
			resp.Body = body
			resp.Elapsed = time.Since(start)
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			resp.Elapsed = time.Since(start)
			return resp, ctx.Err()
		}

		f.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt, "error", err)

		if attempt < f.maxAttempts && f.retryDelay > 0 {
			select {
			case <-ctx.Done():
				resp.Elapsed = time.Since(start)
				return resp, ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}
	}

	resp.Elapsed = time.Since(start)
	return resp, lastErr
}

// get performs a single GET request.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64*1024)) //nolint:errcheck // drain for connection reuse
		return nil, res.StatusCode, &StatusError{Code: res.StatusCode}
	}

	var r io.Reader = res.Body
	if f.maxBodySize > 0 {
		r = io.LimitReader(res.Body, f.maxBodySize)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, res.StatusCode, nil
}
