package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <machine> [input...]",
	Short: "Run a machine over one or more inputs",
	Long: `Runs the machine to completion over every input and prints its outcome
(ACCEPTED, REJECTED or HALTED) with the final tape.

<machine> is a definition file, or the name of a machine in --dir.
Inputs run concurrently; without inputs the empty string is used.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := options(cmd)
		opts.Trace, _ = cmd.Flags().GetBool("trace")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := cli.Run(ctx, opts, args[0], args[1:]); err != nil {
			exit(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("trace", "t", false, "Include every configuration of the run")
}
