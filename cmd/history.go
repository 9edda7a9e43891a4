package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsim-dev/vsim/sim/history"
)

var (
	historyDB    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "List recorded simulation runs",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return writeRuns(cmd.OutOrStdout(), runs)
	},
}

// writeRuns prints runs as an aligned table.
func writeRuns(w io.Writer, runs []history.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tMODEL\tSTOP\tTICKS\tSTARTED\tDURATION\tTRACE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.RunID, r.Model, r.StopReason, r.ClockTicks,
			r.StartedAt.Format(time.RFC3339), r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond), r.TracePath)
	}
	return tw.Flush()
}

func init() {
	historyCmd.Flags().StringVar(&historyDB, "db", "vsim_runs.db", "SQLite run history database")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
