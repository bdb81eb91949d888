package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"longtake/internal/section"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the section transition graph",
	}

	var showFile string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print sections and transitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, source, err := loadGraph(ctx, showFile)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Graph: %s\n\n", source)

			sectionRows := make([][]string, 0, len(graph.Sections()))
			for _, s := range graph.Sections() {
				info := graph.Info(s)
				sectionRows = append(sectionRows, []string{
					string(s),
					yesNo(info.Looping),
					yesNo(info.Wheel),
					yesNo(info.UI),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Section", "Looping", "Wheel", "UI"},
				sectionRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintln(stdout)

			edgeRows := make([][]string, 0, len(graph.Edges()))
			for _, edge := range graph.Edges() {
				edgeRows = append(edgeRows, []string{
					string(edge.From),
					edge.Kind.String(),
					string(edge.To),
					string(edge.Clip),
					yesNo(edge.RequiresLoopWait),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"From", "Intent", "To", "Clip", "Loop Wait"},
				edgeRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	showCmd.Flags().StringVar(&showFile, "file", "", "Graph file to show instead of the configured one")

	var validateFile string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a transition graph file",
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, source, err := loadGraph(ctx, validateFile)
			if err != nil {
				return err
			}
			if err := graph.Validate(); err != nil {
				return fmt.Errorf("graph %s: %w", source, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Graph %s is valid (%d sections, %d edges)\n", source, len(graph.Sections()), len(graph.Edges()))
			return nil
		},
	}
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Graph file to validate instead of the configured one")

	graphCmd.AddCommand(showCmd)
	graphCmd.AddCommand(validateCmd)
	return graphCmd
}

func loadGraph(ctx *commandContext, file string) (*section.Graph, string, error) {
	path := strings.TrimSpace(file)
	if path == "" {
		if cfg := ctx.configValue(); cfg != nil {
			path = cfg.Paths.GraphPath
		}
	}
	if path == "" {
		return section.Embedded(), "embedded", nil
	}
	graph, err := section.LoadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("load graph %s: %w", path, err)
	}
	return graph, path, nil
}
