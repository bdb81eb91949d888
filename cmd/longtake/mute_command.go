package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"longtake/internal/ipc"
)

func newMuteCommand(ctx *commandContext) *cobra.Command {
	muteCmd := &cobra.Command{
		Use:   "mute",
		Short: "Show or change the persisted sound preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Muted: %s\n", yesNo(resp.Muted))
				return nil
			})
		},
	}

	muteCmd.AddCommand(&cobra.Command{
		Use:   "on",
		Short: "Mute experience audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMuted(cmd, ctx, true)
		},
	})
	muteCmd.AddCommand(&cobra.Command{
		Use:   "off",
		Short: "Unmute experience audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setMuted(cmd, ctx, false)
		},
	})

	return muteCmd
}

func setMuted(cmd *cobra.Command, ctx *commandContext, muted bool) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Mute(muted)
		if err != nil {
			return fmt.Errorf("set mute preference: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Muted: %s\n", yesNo(resp.Muted))
		return nil
	})
}
