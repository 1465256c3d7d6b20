package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing is a deterministic Turing machine interpreter",
	Long: `Turing loads machines described as a 7-tuple (JSON or YAML) and runs them
over input strings, step by step or to completion, reporting the tape trace.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing machine definitions")
	flags.String("log-level", "", "Log level (debug, info, warn, error); logs are off when empty")
	flags.Int("step-limit", 0, "Maximum transitions per run (0 uses the default)")
	flags.Bool("left-bounded", false, "Treat cell 0 as the left end of the tape")
	flags.String("redis-url", os.Getenv("TURING_REDIS_URL"), "Redis URL used to store runs (e.g. redis://localhost:6379/0)")
	flags.Bool("json", false, "Print JSON instead of text")
	flags.Bool("plain", false, "Disable styled output")
}

// options collects the persistent flags of cmd.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	opts.Dir, _ = flags.GetString("dir")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.StepLimit, _ = flags.GetInt("step-limit")
	opts.LeftBounded, _ = flags.GetBool("left-bounded")
	opts.RedisURL, _ = flags.GetString("redis-url")
	opts.JSON, _ = flags.GetBool("json")
	opts.Plain, _ = flags.GetBool("plain")
	return opts
}

// exit prints err and terminates with status 1. Violations printed by
// validate are not repeated.
func exit(err error) {
	if !errors.Is(err, cli.ErrInvalidDefinition) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
