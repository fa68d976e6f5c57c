package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/config"
)

// NewRootCmd creates the root command for docpipe.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docpipe",
		Short: "File-coordinated fetch, extract and analyze pipeline",
		Long: `docpipe downloads the URLs listed in <root>/input/urls.txt, extracts clean text
from every page, and computes corpus statistics into <root>/analysis/final_report.json.

Each stage waits for the completion marker of the stage before it, so the
fetch, process and analyze commands can run as separate processes (or
containers) sharing one root directory. The run command executes all three
in order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("root", "r", config.DefaultRoot, "Shared root directory")
	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default: search for .docpipe)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().Bool("no-history", false, "Do not record runs in the history database")

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
