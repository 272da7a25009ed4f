package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/feed-archiver/internal/history"
)

var historyFlags struct {
	db    string
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history ledger",
	Long: `List the most recent runs recorded in the SQLite history ledger.

Examples:
  feed-archiver history --history-db /var/lib/feed-archiver/history.db
  feed-archiver history --limit 30`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.db, "history-db", "", "SQLite database (defaults to history.path from config)")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 10, "number of runs to show")
}

func showHistory(cmd *cobra.Command, args []string) error {
	path := historyFlags.db
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return configFailure(fmt.Errorf("failed to load config: %w", err))
		}
		path = cfg.History.Path
	}
	if path == "" {
		return configFailure(fmt.Errorf("no history database: set history.path or --history-db"))
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), historyFlags.limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tSTATE\tARCHIVED\tPURGED\tFAILED\tERROR")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.Started.Local().Format("2006-01-02 15:04:05"),
			r.Finished.Sub(r.Started).Round(time.Millisecond),
			r.State, r.Archived, r.Purged, r.Failed, r.Error)
	}
	return w.Flush()
}
