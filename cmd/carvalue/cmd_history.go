package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-carvalue/internal/history"
)

var errNoHistory = errors.New("history database not configured: set --history-db or CARVALUE_HISTORY_DB")

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent successful estimates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root.cfg.HistoryDB == "" {
				return errNoHistory
			}
			store, err := history.Open(cmd.Context(), root.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No estimates recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tPRICE\tRECORD")
			for _, entry := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", entry.ID, entry.CreatedAt.UTC().Format(time.RFC3339), entry.Formatted, entry.Record)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "number of entries to show")
	return cmd
}
