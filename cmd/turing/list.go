package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the machines in --dir",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.List(context.Background(), options(cmd)); err != nil {
			exit(err)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show runs kept in the run store",
	Long:  `Lists the runs saved in Redis (see --redis-url), or prints one run in full.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := ""
		if len(args) > 0 {
			id = args[0]
		}
		if err := cli.History(context.Background(), options(cmd), id); err != nil {
			exit(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
}
