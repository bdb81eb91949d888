package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"longtake/internal/daemonctl"
	"longtake/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the longtake daemon and the experience loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, result, err := daemonctl.EnsureRunning(ctx.socketPath(), launchOptions(ctx))
			if err != nil {
				return err
			}
			defer client.Close()

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			resp, err := client.Start()
			if err != nil {
				return fmt.Errorf("start experience: %w", err)
			}
			switch {
			case resp.Started:
				fmt.Fprintln(stdout, "Experience started")
			case strings.TrimSpace(resp.Message) != "":
				fmt.Fprintln(stdout, resp.Message)
			default:
				fmt.Fprintln(stdout, "Experience already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the longtake daemon experience loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			wasRunning, err := daemonctl.StopDaemon(ctx.socketPath())
			if err != nil {
				return err
			}
			if !wasRunning {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			fmt.Fprintln(stdout, "Experience stopped")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				if statusJSON {
					return writeJSON(cmd, resp)
				}
				renderStatus(cmd, resp)
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit status as JSON")

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

func renderStatus(cmd *cobra.Command, resp *ipc.StatusResponse) {
	rows := [][]string{
		{"Running", yesNo(resp.Running)},
		{"PID", fmt.Sprintf("%d", resp.PID)},
		{"State", resp.Engine.State},
		{"Section", string(resp.Engine.Current)},
		{"Previous", string(resp.Engine.Previous)},
		{"UI visible", yesNo(resp.Overlay.UIVisible)},
		{"Muted", yesNo(resp.Muted)},
		{"Journal entries", fmt.Sprintf("%d", resp.JournalCount)},
	}
	if resp.Engine.Transitioning || resp.Engine.WaitingForLoop {
		rows = append(rows,
			[]string{"Target", string(resp.Engine.Target)},
			[]string{"Clip", string(resp.Engine.Clip)},
		)
	}
	if resp.GraphPath != "" {
		rows = append(rows, []string{"Graph", resp.GraphPath})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func launchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
