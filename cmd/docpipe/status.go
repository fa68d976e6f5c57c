package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iidollbunny/docpipe/internal/coord"
	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of every stage",
		Long: `Status prints each stage's recorded state (pending, running, done, stalled or
failed) and whether its completion marker exists in the shared root.`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}
	cmd.Flags().Bool("json", false, "Print the status as JSON")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	snapshot, err := coord.NewStateStore(storage.NewLayout(cfg.Root)).Snapshot()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}
	return printStatus(cmd.OutOrStdout(), snapshot)
}

var stateColors = map[model.State]*color.Color{
	model.StatePending: color.New(color.FgYellow),
	model.StateRunning: color.New(color.FgCyan),
	model.StateDone:    color.New(color.FgGreen),
	model.StateStalled: color.New(color.FgMagenta),
	model.StateFailed:  color.New(color.FgRed),
}

func colorState(s model.State) string {
	if c, ok := stateColors[s]; ok {
		return c.Sprint(s)
	}
	return string(s)
}

func printStatus(w io.Writer, snapshot []coord.StageStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATE\tMARKER\tUPDATED\tDETAIL")
	for _, s := range snapshot {
		marker := "-"
		if s.MarkerPresent {
			marker = "yes"
		}
		updated := "-"
		if !s.UpdatedAt.IsZero() {
			updated = s.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Stage, colorState(s.State), marker, updated, s.Detail)
	}
	return tw.Flush()
}
