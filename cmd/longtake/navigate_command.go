package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"longtake/internal/ipc"
	"longtake/internal/section"
)

func newNavigateCommand(ctx *commandContext) *cobra.Command {
	navigateCmd := &cobra.Command{
		Use:   "navigate",
		Short: "Drive section transitions",
	}

	navigateCmd.AddCommand(&cobra.Command{
		Use:   "forward",
		Short: "Advance to the next section on the main axis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, ctx, "forward", "")
		},
	})
	navigateCmd.AddCommand(&cobra.Command{
		Use:   "back",
		Short: "Return to the previous section on the main axis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(cmd, ctx, "back", "")
		},
	})
	navigateCmd.AddCommand(&cobra.Command{
		Use:   "goto <section>",
		Short: "Jump directly to a named section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.ToLower(strings.TrimSpace(args[0]))
			if _, ok := section.Parse(target); !ok {
				return fmt.Errorf("unknown section %q (expected one of %s)", args[0], sectionNames())
			}
			return runNavigate(cmd, ctx, "direct", target)
		},
	})

	return navigateCmd
}

func runNavigate(cmd *cobra.Command, ctx *commandContext, intent, target string) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Navigate(intent, target)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		stdout := cmd.OutOrStdout()
		if !resp.Accepted {
			if strings.TrimSpace(resp.Message) != "" {
				fmt.Fprintf(stdout, "Rejected: %s\n", resp.Message)
			} else {
				fmt.Fprintln(stdout, "Rejected")
			}
			return nil
		}
		switch {
		case resp.Engine.WaitingForLoop:
			fmt.Fprintf(stdout, "Accepted: waiting for %s loop to finish before %s\n", resp.Engine.Current, resp.Engine.Target)
		case resp.Engine.Transitioning:
			fmt.Fprintf(stdout, "Accepted: playing bridge %s to %s\n", resp.Engine.Clip, resp.Engine.Target)
		default:
			fmt.Fprintf(stdout, "Accepted: now on %s\n", resp.Engine.Current)
		}
		return nil
	})
}

func sectionNames() string {
	all := section.All()
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
