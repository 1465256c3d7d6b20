package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <machine>",
	Short: "Check a machine definition for consistency",
	Long:  `Validates the 7-tuple and reports every violation found (unknown states or symbols, duplicate rules, misplaced blank).`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(context.Background(), options(cmd), args[0]); err != nil {
			exit(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
