package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/config"
)

// addWaitFlags registers the upstream polling flags.
func addWaitFlags(cmd *cobra.Command) {
	defaults := config.NewConfig()
	cmd.Flags().Duration("poll-interval", defaults.PollInterval,
		"How often to check for the upstream completion marker")
	cmd.Flags().Duration("wait-timeout", defaults.WaitTimeout,
		"Give up waiting for the upstream marker after this long (0 waits forever)")
}

// addFetchFlags registers the fetch stage flags.
func addFetchFlags(cmd *cobra.Command) {
	defaults := config.NewConfig()
	cmd.Flags().DurationP("timeout", "t", defaults.Timeout, "Per-request timeout")
	cmd.Flags().Int("max-attempts", defaults.MaxAttempts, "Attempts per URL, including the first")
	cmd.Flags().Duration("retry-delay", defaults.RetryDelay, "Pause between attempts")
	cmd.Flags().IntP("concurrency", "j", defaults.Concurrency, "URLs fetched in parallel")
	cmd.Flags().Float64("rate-limit", defaults.RateLimit, "Maximum requests per second (0 disables)")
	cmd.Flags().String("user-agent", defaults.UserAgent, "User-Agent header")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (host:port)")
	cmd.Flags().Int64("max-body-size", defaults.MaxBodySize, "Maximum response bytes read (0 disables)")
}

// addAnalysisFlags registers the analyze stage flags.
func addAnalysisFlags(cmd *cobra.Command) {
	defaults := config.NewConfig()
	cmd.Flags().StringSlice("stopwords", nil, "Stopwords replacing the default set")
	cmd.Flags().String("token-pattern", "", "Token regular expression (default [a-z]+(?:'[a-z]+)?)")
	cmd.Flags().Int("top-words", defaults.TopWords, "Size of the top words table")
	cmd.Flags().Int("top-ngrams", defaults.TopNGrams, "Size of the bigram and trigram tables")
	cmd.Flags().BoolP("markdown", "m", false, "Also write analysis/final_report.md")
}

// buildConfig layers defaults, the config file and explicitly set flags.
// It returns the validated config and the config file path that was applied.
func buildConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, "", err
	}
	path, err := cfg.Load()
	if err != nil {
		return nil, "", fmt.Errorf("configuration error: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("configuration error: %w", err)
	}
	return cfg, path, nil
}

// changed reports whether the flag exists on cmd and was set by the user.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// applyFlags overlays every explicitly set flag onto cfg.
//
//nolint:gocyclo // flat list of flag-to-field assignments
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	// Verbosity and log format are not config-file keys.
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return err
	}

	if changed(cmd, "root") {
		if cfg.Root, err = flags.GetString("root"); err != nil {
			return err
		}
	}
	if changed(cmd, "no-history") {
		var noHistory bool
		if noHistory, err = flags.GetBool("no-history"); err != nil {
			return err
		}
		cfg.HistoryEnabled = !noHistory
	}
	if changed(cmd, "poll-interval") {
		if cfg.PollInterval, err = flags.GetDuration("poll-interval"); err != nil {
			return err
		}
	}
	if changed(cmd, "wait-timeout") {
		if cfg.WaitTimeout, err = flags.GetDuration("wait-timeout"); err != nil {
			return err
		}
	}
	if changed(cmd, "timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed(cmd, "max-attempts") {
		if cfg.MaxAttempts, err = flags.GetInt("max-attempts"); err != nil {
			return err
		}
	}
	if changed(cmd, "retry-delay") {
		if cfg.RetryDelay, err = flags.GetDuration("retry-delay"); err != nil {
			return err
		}
	}
	if changed(cmd, "concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if changed(cmd, "rate-limit") {
		if cfg.RateLimit, err = flags.GetFloat64("rate-limit"); err != nil {
			return err
		}
	}
	if changed(cmd, "user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if changed(cmd, "proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if changed(cmd, "max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if changed(cmd, "stopwords") {
		if cfg.Stopwords, err = flags.GetStringSlice("stopwords"); err != nil {
			return err
		}
	}
	if changed(cmd, "token-pattern") {
		if cfg.TokenPattern, err = flags.GetString("token-pattern"); err != nil {
			return err
		}
	}
	if changed(cmd, "top-words") {
		if cfg.TopWords, err = flags.GetInt("top-words"); err != nil {
			return err
		}
	}
	if changed(cmd, "top-ngrams") {
		if cfg.TopNGrams, err = flags.GetInt("top-ngrams"); err != nil {
			return err
		}
	}
	if changed(cmd, "markdown") {
		if cfg.Markdown, err = flags.GetBool("markdown"); err != nil {
			return err
		}
	}
	return nil
}
