package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"longtake/internal/ipc"
)

func newInputCommand(ctx *commandContext) *cobra.Command {
	inputCmd := &cobra.Command{
		Use:   "input",
		Short: "Feed gestures through the input gateway",
	}

	inputCmd.AddCommand(&cobra.Command{
		Use:   "wheel <delta>",
		Short: "Send a wheel delta (positive scrolls forward)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse delta %q: %w", args[0], err)
			}
			return runGesture(cmd, ctx, func(client *ipc.Client) (*ipc.GestureResponse, error) {
				return client.InputWheel(delta)
			})
		},
	})

	inputCmd.AddCommand(&cobra.Command{
		Use:   "touch <distance>",
		Short: "Send a completed swipe distance (positive swipes forward)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			distance, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parse distance %q: %w", args[0], err)
			}
			return runGesture(cmd, ctx, func(client *ipc.Client) (*ipc.GestureResponse, error) {
				return client.InputTouch(distance)
			})
		},
	})

	return inputCmd
}

func runGesture(cmd *cobra.Command, ctx *commandContext, send func(*ipc.Client) (*ipc.GestureResponse, error)) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := send(client)
		if err != nil {
			return fmt.Errorf("send gesture: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Verdict: %s (section %s, state %s)\n", resp.Verdict, resp.Engine.Current, resp.Engine.State)
		return nil
	})
}
