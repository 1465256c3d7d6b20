package main

import (
	"context"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step <machine> [input]",
	Short: "Step through a run interactively",
	Long: `Starts a session and waits for commands on stdin:
  n (or enter)  apply one transition
  u             undo the last transition
  r             run until the machine halts
  q             quit`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		input := ""
		if len(args) > 1 {
			input = args[1]
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := cli.Step(ctx, options(cmd), args[0], input, os.Stdin); err != nil {
			if ctx.Signal() != nil {
				return
			}
			exit(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
}
