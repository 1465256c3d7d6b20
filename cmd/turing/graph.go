package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <machine> [input]",
	Short: "Export the state diagram",
	Long: `Outputs a Mermaid diagram (graph LR) of the machine's states and rules.
With an input, the machine runs over it and the visited states are highlighted.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Graph(context.Background(), options(cmd), args[0], args[1:]...); err != nil {
			exit(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
