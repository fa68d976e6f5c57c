package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/database"
	"github.com/iidollbunny/docpipe/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded stage runs, fetches and reports",
		Long: `History reads the SQLite run history. By default it lists stage runs, newest
first. Use --url to see every recorded fetch of one URL, or --reports to list
archived analysis reports.

Examples:
  docpipe history
  docpipe history --stage fetch --limit 5
  docpipe history --url https://example.com/
  docpipe history --reports`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}
	cmd.Flags().StringP("stage", "s", "", "Only show runs of this stage")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs (0 for all)")
	cmd.Flags().String("url", "", "Show the fetch history of this URL")
	cmd.Flags().Bool("reports", false, "List archived reports")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	stageName, err := cmd.Flags().GetString("stage")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	url, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	reports, err := cmd.Flags().GetBool("reports")
	if err != nil {
		return err
	}

	var stage model.Stage
	if stageName != "" {
		if stage, err = model.ParseStage(stageName); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.HistoryDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case url != "":
		records, err := db.FetchHistory(ctx, url)
		if err != nil {
			return err
		}
		return printFetches(out, records)
	case reports:
		metas, err := db.ListReports(ctx)
		if err != nil {
			return err
		}
		return printReports(out, metas)
	default:
		runs, err := db.ListRuns(ctx, stage, limit)
		if err != nil {
			return err
		}
		return printRuns(out, runs)
	}
}

func printRuns(w io.Writer, runs []model.StageRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAGE\tSTATE\tSTARTED\tDURATION\tDETAIL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Stage, colorState(r.State), humanize.Time(r.StartedAt), r.Duration().Round(time.Millisecond), r.Detail)
	}
	return tw.Flush()
}

func printFetches(w io.Writer, records []database.FetchRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No fetches recorded for this URL.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FETCHED\tSTATUS\tHTTP\tATTEMPTS\tSIZE\tFILE\tERROR")
	for _, r := range records {
		size := "-"
		if r.Status == model.FetchSuccess {
			size = humanize.Bytes(uint64(r.Size)) //nolint:gosec // sizes are never negative
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			humanize.Time(r.FetchedAt), r.Status, r.StatusCode, r.Attempts, size, r.File, r.Error)
	}
	return tw.Flush()
}

func printReports(w io.Writer, metas []database.ReportMetadata) error {
	if len(metas) == 0 {
		_, err := fmt.Fprintln(w, "No reports archived.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROCESSED\tDOCUMENTS\tWORDS\tUNIQUE")
	for _, m := range metas {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			m.ID, humanize.Time(m.ProcessedAt), m.Documents, humanize.Comma(int64(m.TotalWords)), humanize.Comma(int64(m.UniqueWords)))
	}
	return tw.Flush()
}
