package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"longtake/internal/ipc"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the transition journal",
	}

	var limit int
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent committed transitions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.JournalList(limit)
				if err != nil {
					return fmt.Errorf("list journal: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "Journal is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						fmt.Sprintf("%d", entry.ID),
						entry.From,
						entry.To,
						entry.Trigger,
						fmt.Sprintf("%dms", entry.LoopWaitMS),
						fmt.Sprintf("%dms", entry.BridgeMS),
						yesNo(entry.Fallback),
						entry.CommittedAt.Local().Format(time.RFC3339),
					})
				}
				table := renderTable(
					[]string{"ID", "From", "To", "Trigger", "Loop Wait", "Bridge", "Fallback", "Committed"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Emit entries as JSON")

	journalCmd.AddCommand(listCmd)
	return journalCmd
}
