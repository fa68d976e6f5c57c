package main

import (
	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/model"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download every URL in input/urls.txt into raw/",
		Long: `Fetch waits for <root>/input/urls.txt, downloads each listed URL with retries,
and writes successful pages to <root>/raw/page_<i>.html, where i is the URL's
position in the list. Failures are recorded in status/fetch_errors.log.
The stage ends by writing status/fetch_complete.json.

Examples:
  docpipe fetch --root /shared
  docpipe fetch --concurrency 4 --rate-limit 2 --proxy 127.0.0.1:9050`,
		Args: cobra.NoArgs,
		RunE: stageRunE(model.StageFetch),
	}
	addWaitFlags(cmd)
	addFetchFlags(cmd)
	return cmd
}

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "process",
		Aliases: []string{"extract"},
		Short:   "Extract clean text and statistics from raw pages",
		Long: `Process waits for status/fetch_complete.json, then turns every raw/*.html page
into processed/<name>.json holding the clean text, statistics, links and images.
The stage ends by writing status/process_complete.json.`,
		Args: cobra.NoArgs,
		RunE: stageRunE(model.StageProcess),
	}
	addWaitFlags(cmd)
	return cmd
}

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute corpus statistics into analysis/final_report.json",
		Long: `Analyze waits for status/process_complete.json, then computes word frequencies,
n-grams, pairwise Jaccard similarity and readability over all processed documents.
The stage ends by writing status/analyze_complete.json.`,
		Args: cobra.NoArgs,
		RunE: stageRunE(model.StageAnalyze),
	}
	addWaitFlags(cmd)
	addAnalysisFlags(cmd)
	return cmd
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run fetch, process and analyze in one process",
		Long: `Run executes the three stages in order. Each stage still follows the marker
protocol, so a run can be combined with stages running elsewhere.`,
		Args: cobra.NoArgs,
		RunE: stageRunE(model.Stages...),
	}
	addWaitFlags(cmd)
	addFetchFlags(cmd)
	addAnalysisFlags(cmd)
	return cmd
}

// stageRunE returns a RunE that runs the given stages.
func stageRunE(names ...model.Stage) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signalContext(cmd)
		defer stop()

		return a.runStages(ctx, names...)
	}
}
