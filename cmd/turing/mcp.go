package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the interpreter as MCP tools (validate_machine, run_machine,
list_machines, machine_graph) so that AI agents can run machines.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := options(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		maxSteps, _ := cmd.Flags().GetInt("max-step-limit")
		if opts.LogLevel == "" {
			opts.LogLevel = "info"
		}

		engine, logger, closeStore, err := cli.NewEngine(opts)
		if err != nil {
			log.Fatalf("Error initializing turing: %v", err)
		}
		defer closeStore()
		slog.SetDefault(logger)

		srv := mcp.NewServer(engine, file.NewCatalog(opts.Dir), mcp.WithMaxStepLimit(maxSteps))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Turing MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("Starting Turing MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Int("max-step-limit", mcp.DefaultMaxStepLimit, "Largest step limit a tool call may ask for")
}
