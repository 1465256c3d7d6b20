package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
)

// NewEngine builds the engine used by long-running commands (serve, mcp).
// The returned close function releases the run store, if any.
func NewEngine(opts Options, extra ...turing.Option) (*turing.Engine, *slog.Logger, func() error, error) {
	logger, debug, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	eng, closer, err := createEngine(opts, logger, debug, extra...)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, logger, closer, nil
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts Options, logger *slog.Logger, debug bool, extra ...turing.Option) (*turing.Engine, func() error, error) {
	engineOpts := []turing.Option{
		turing.WithLogger(logger),
		turing.WithStepLimit(opts.StepLimit),
		turing.WithLeftBoundedTape(opts.LeftBounded),
	}

	if debug {
		engineOpts = append(engineOpts, turing.WithLifecycleHooks(createDebugHooks(logger)))
	}

	closer := func() error { return nil }
	if opts.RedisURL != "" {
		store, err := redis.NewFromURL(opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing run store: %w", err)
		}
		engineOpts = append(engineOpts, turing.WithStore(store))
		closer = store.Close
	}

	return turing.New(append(engineOpts, extra...)...), closer, nil
}

// setup loads the logger and the engine for a command working on def.
func setup(opts Options, def domain.Definition) (*turing.Engine, func() error, error) {
	logger, debug, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Machine loaded", "machine", def.Name, "states", len(def.States), "transitions", len(def.Transitions))
	return createEngine(opts, logger, debug)
}
