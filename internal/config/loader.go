package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".docpipe"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration is a time.Duration read from YAML strings such as "2s" or "30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// File is the structure of the .docpipe configuration file.
// Pointer fields distinguish "absent" from zero values.
type File struct {
	Root         *string      `yaml:"root,omitempty"`
	PollInterval *Duration    `yaml:"poll_interval,omitempty"`
	WaitTimeout  *Duration    `yaml:"wait_timeout,omitempty"`
	Fetch        FetchFile    `yaml:"fetch,omitempty"`
	Analysis     AnalysisFile `yaml:"analysis,omitempty"`
	History      HistoryFile  `yaml:"history,omitempty"`
}

// FetchFile holds the fetch section of the configuration file.
type FetchFile struct {
	Timeout     *Duration `yaml:"timeout,omitempty"`
	MaxAttempts *int      `yaml:"max_attempts,omitempty"`
	RetryDelay  *Duration `yaml:"retry_delay,omitempty"`
	Concurrency *int      `yaml:"concurrency,omitempty"`
	RateLimit   *float64  `yaml:"rate_limit,omitempty"`
	UserAgent   *string   `yaml:"user_agent,omitempty"`
	Proxy       *string   `yaml:"proxy,omitempty"`
	MaxBodySize *int64    `yaml:"max_body_size,omitempty"`
}

// AnalysisFile holds the analysis section of the configuration file.
type AnalysisFile struct {
	Stopwords    []string `yaml:"stopwords,omitempty"`
	TokenPattern *string  `yaml:"token_pattern,omitempty"`
	TopWords     *int     `yaml:"top_words,omitempty"`
	TopNGrams    *int     `yaml:"top_ngrams,omitempty"`
	Markdown     *bool    `yaml:"markdown,omitempty"`
}

// HistoryFile holds the history section of the configuration file.
type HistoryFile struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Dir     *string `yaml:"dir,omitempty"`
}

// LoadConfigFile reads and decodes a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, if specified
// 2. .docpipe in the current directory
// 3. .docpipe in the user's home directory
// 4. config.yaml in the XDG config directory
//
// Returns the path found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Apply overlays the values present in f onto c.
func (f *File) Apply(c *Config) {
	setString(&c.Root, f.Root)
	setDuration(&c.PollInterval, f.PollInterval)
	setDuration(&c.WaitTimeout, f.WaitTimeout)

	setDuration(&c.Timeout, f.Fetch.Timeout)
	setInt(&c.MaxAttempts, f.Fetch.MaxAttempts)
	setDuration(&c.RetryDelay, f.Fetch.RetryDelay)
	setInt(&c.Concurrency, f.Fetch.Concurrency)
	if f.Fetch.RateLimit != nil {
		c.RateLimit = *f.Fetch.RateLimit
	}
	setString(&c.UserAgent, f.Fetch.UserAgent)
	setString(&c.ProxyAddress, f.Fetch.Proxy)
	if f.Fetch.MaxBodySize != nil {
		c.MaxBodySize = *f.Fetch.MaxBodySize
	}

	if f.Analysis.Stopwords != nil {
		c.Stopwords = f.Analysis.Stopwords
	}
	setString(&c.TokenPattern, f.Analysis.TokenPattern)
	setInt(&c.TopWords, f.Analysis.TopWords)
	setInt(&c.TopNGrams, f.Analysis.TopNGrams)
	setBool(&c.Markdown, f.Analysis.Markdown)

	setBool(&c.HistoryEnabled, f.History.Enabled)
	setString(&c.HistoryDir, f.History.Dir)
}

// Load finds the configuration file for c.ConfigFilePath and applies it.
// A missing file is only an error when the path was given explicitly.
// It returns the path that was applied, or an empty string.
func (c *Config) Load() (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	f.Apply(c)
	return path, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}
