package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
	"github.com/aretw0/pizzabot/internal/presentation/graph"
	"github.com/aretw0/pizzabot/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialog graph",
	Long:  `Prints the dialog transition table as a Mermaid diagram (graph TD) or as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		current, _ := cmd.Flags().GetString("highlight")

		transitions := pizzabot.New().Transitions()

		switch format {
		case "mermaid":
			var overlay *graph.Overlay
			if current != "" {
				state := domain.StateID(current)
				if !state.Valid() {
					return fmt.Errorf("unknown state %q", current)
				}
				overlay = &graph.Overlay{Current: state}
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(transitions, overlay))
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(transitions)
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
	graphCmd.Flags().String("highlight", "", "State to highlight in the Mermaid output")
}
