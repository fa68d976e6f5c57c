package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/database"
	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/report"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the analysis report",
		Long: `Report renders <root>/analysis/final_report.json as plain text, Markdown or JSON.
With --id, an archived report is read from the run history instead.

Examples:
  docpipe report
  docpipe report --format markdown -o report.md
  docpipe report --id 3`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}
	cmd.Flags().StringP("format", "f", "simple", "Output format: simple, markdown or json")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Int64("id", 0, "Render an archived report from the run history")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	var rep *model.Report
	if id > 0 {
		rep, err = loadArchivedReport(cmd, cfg.HistoryDir, id)
	} else {
		rep, err = loadReport(storage.NewLayout(cfg.Root))
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		f, err := os.Create(output) //nolint:gosec // user-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	writer, err := report.New(format, w)
	if err != nil {
		return err
	}
	_, err = writer.Write(rep)
	return err
}

func loadReport(layout *storage.Layout) (*model.Report, error) {
	var rep model.Report
	if err := storage.ReadJSON(layout.ReportPath(), &rep); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no report at %s: run the analyze stage first", layout.ReportPath())
		}
		return nil, err
	}
	return &rep, nil
}

func loadArchivedReport(cmd *cobra.Command, dir string, id int64) (*model.Report, error) {
	db, err := database.Open(dir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rep, err := db.GetReportByID(cmd.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("no archived report with id %d", id)
	}
	return rep, err
}
