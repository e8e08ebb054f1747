package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"skiprice/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded stage outputs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(store *ledger.Store) error {
				entries, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No saves recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistory(entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", ledger.DefaultListLimit, "Maximum number of entries to show")
	return cmd
}

func renderHistory(entries []ledger.Entry) string {
	headers := []string{"When", "Stage", "Status", "Format", "Bytes", "Path"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		stage := e.Stage
		if stage == "" {
			stage = "-"
		}
		rows = append(rows, []string{
			e.RecordedAt.Local().Format(time.DateTime),
			stage,
			string(e.Status),
			e.Format,
			strconv.FormatInt(e.Bytes, 10),
			e.Path,
		})
	}
	return renderTable(headers, rows, []text.Align{4: text.AlignRight})
}
