package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/pkg/adapters/file"
	httpAdapter "github.com/aretw0/turing/pkg/adapters/http"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the interpreter as a JSON API over HTTP. Machines in --dir are
served by name; runs are kept in Redis when --redis-url is set.
Interactive sessions (/v1/sessions) live in memory.
Prometheus metrics are published on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := options(cmd)
		port, _ := cmd.Flags().GetString("port")
		idle, _ := cmd.Flags().GetDuration("session-idle")
		maxSessions, _ := cmd.Flags().GetInt("max-sessions")
		maxSteps, _ := cmd.Flags().GetInt("max-step-limit")
		if opts.LogLevel == "" {
			opts.LogLevel = "info"
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		catalog := file.NewCatalog(opts.Dir)
		known, err := catalog.List(context.Background())
		if err != nil {
			fmt.Printf("Error listing machines in %s: %v\n", opts.Dir, err)
			os.Exit(1)
		}
		metrics := observability.NewMetrics(reg, observability.WithKnownMachines(known...))

		engine, logger, closeStore, err := cli.NewEngine(opts, turing.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			fmt.Printf("Error initializing turing: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		sessions := session.NewManager(engine,
			session.WithIdleTimeout(idle),
			session.WithMaxSessions(maxSessions),
			session.WithLogger(logger),
		)

		handler := httpAdapter.NewHandler(engine,
			httpAdapter.WithCatalog(catalog),
			httpAdapter.WithMaxStepLimit(maxSteps),
			httpAdapter.WithSessions(sessions),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Turing Server on %s\n", srv.Addr)
			fmt.Printf("Serving machines from: %s\n", opts.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			closeStore()
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Turing Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Duration("session-idle", session.DefaultIdleTimeout, "Evict interactive sessions idle for longer than this (0 keeps them)")
	serveCmd.Flags().Int("max-step-limit", httpAdapter.DefaultMaxStepLimit, "Largest step limit a request may ask for")
	serveCmd.Flags().Int("max-sessions", session.DefaultMaxSessions, "Maximum number of live interactive sessions (0 for no limit)")
}
