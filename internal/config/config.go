package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"

	"github.com/iidollbunny/docpipe/internal/analysis"
	"github.com/iidollbunny/docpipe/internal/coord"
	"github.com/iidollbunny/docpipe/internal/fetch"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docpipe"

	// DefaultRoot is the shared area every stage reads and writes.
	DefaultRoot = "/shared"

	// DefaultConcurrency fetches one URL at a time.
	DefaultConcurrency = 1
)

// Config holds all configuration options for docpipe.
// It is populated from defaults, the config file and CLI flags, in that order,
// and passed to the stages explicitly.
type Config struct {
	// Root is the shared area containing input/, raw/, processed/, analysis/ and status/.
	Root string

	// PollInterval is how often a waiting stage checks for its upstream marker.
	PollInterval time.Duration

	// WaitTimeout bounds the wait for an upstream marker. Zero waits forever.
	WaitTimeout time.Duration

	// Timeout is the per-request HTTP timeout of the fetch stage.
	Timeout time.Duration

	// MaxAttempts is the number of attempts per URL, including the first.
	MaxAttempts int

	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration

	// Concurrency is the number of URLs fetched in parallel.
	Concurrency int

	// RateLimit caps requests per second across all workers. Zero disables it.
	RateLimit float64

	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// MaxBodySize caps the bytes read per response. Zero disables the cap.
	MaxBodySize int64

	// Stopwords replaces the default stopword set when non-nil.
	Stopwords []string

	// TokenPattern replaces the default token regular expression when non-empty.
	TokenPattern string

	TopWords  int
	TopNGrams int

	// Markdown also writes analysis/final_report.md.
	Markdown bool

	// HistoryEnabled records stage runs and reports in the SQLite history.
	HistoryEnabled bool

	// HistoryDir holds the history database. Defaults to the XDG data directory.
	HistoryDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit configuration file path. Empty means search.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Root:           DefaultRoot,
		PollInterval:   coord.DefaultPollInterval,
		WaitTimeout:    coord.DefaultWaitTimeout,
		Timeout:        fetch.DefaultTimeout,
		MaxAttempts:    fetch.DefaultMaxAttempts,
		RetryDelay:     fetch.DefaultRetryDelay,
		Concurrency:    DefaultConcurrency,
		UserAgent:      fetch.DefaultUserAgent,
		MaxBodySize:    fetch.DefaultMaxBodySize,
		TopWords:       analysis.DefaultTopWords,
		TopNGrams:      analysis.DefaultTopNGrams,
		HistoryEnabled: true,
		HistoryDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for docpipe.
// On Linux: ~/.local/share/docpipe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docpipe.
// On Linux: ~/.config/docpipe
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrInvalidRoot
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.WaitTimeout < 0 {
		return ErrInvalidWaitTimeout
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.TopWords < 1 || c.TopNGrams < 1 {
		return ErrInvalidTopN
	}
	if c.TokenPattern != "" {
		if _, err := regexp.Compile(c.TokenPattern); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTokenPattern, err)
		}
	}
	return nil
}
