package turing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultStepLimit bounds every run that does not set its own limit.
const DefaultStepLimit = runtime.DefaultStepLimit

// Session is an interactive run that can be stepped and undone.
type Session = runtime.Session

// Engine is the high-level entry point for the library.
// It wraps the internal runtime and optionally persists finished runs.
type Engine struct {
	runtime     *runtime.Engine
	store       ports.RunStore
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	parallelism int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. Repeated use adds hooks
// that run after the ones already registered.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.Compose(e.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStepLimit bounds the number of transitions per run.
// Non-positive values keep DefaultStepLimit.
func WithStepLimit(n int) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStepLimit(n))
	}
}

// WithLeftBoundedTape makes cell 0 the left end of the tape.
func WithLeftBoundedTape(bounded bool) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLeftBoundedTape(bounded))
	}
}

// WithStore persists every record produced by Run and RunBatch.
func WithStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithParallelism caps concurrent runs in RunBatch (default: unlimited).
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}
	return eng.init()
}

// Derive returns a new Engine sharing this engine's configuration with opts
// applied on top. Later options win, so a derived WithStepLimit overrides.
func (e *Engine) Derive(opts ...Option) *Engine {
	eng := &Engine{
		store:       e.store,
		hooks:       e.hooks,
		logger:      e.logger,
		parallelism: e.parallelism,
		runtimeOpts: append([]runtime.EngineOption(nil), e.runtimeOpts...),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng.init()
}

func (e *Engine) init() *Engine {
	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := append([]runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	}, e.runtimeOpts...)
	e.runtime = runtime.NewEngine(runtimeOpts...)

	return e
}

// Compile validates a definition and builds the machine it describes.
func Compile(def domain.Definition) (*machine.Machine, error) {
	return machine.New(def)
}

// StepLimit returns the effective step limit.
func (e *Engine) StepLimit() int {
	return e.runtime.StepLimit()
}

// RequestLimit resolves a step limit asked for by a caller against ceiling.
// A non-positive request selects the engine's own limit, capped at ceiling.
// Requests above ceiling fail with domain.ErrStepLimitTooHigh. A
// non-positive ceiling disables the cap.
func (e *Engine) RequestLimit(requested, ceiling int) (int, error) {
	if ceiling <= 0 {
		if requested > 0 {
			return requested, nil
		}
		return e.StepLimit(), nil
	}
	if requested > ceiling {
		return 0, fmt.Errorf("%w: %d exceeds %d", domain.ErrStepLimitTooHigh, requested, ceiling)
	}
	if requested > 0 {
		return requested, nil
	}
	return min(e.StepLimit(), ceiling), nil
}

// Store returns the configured run store, or nil.
func (e *Engine) Store() ports.RunStore {
	return e.store
}

// Start begins an interactive session. Each character of input is one symbol.
func (e *Engine) Start(ctx context.Context, m *machine.Machine, input string) (*Session, error) {
	if m == nil {
		return nil, fmt.Errorf("machine is required")
	}
	symbols, err := m.ParseInput(input)
	if err != nil {
		return nil, err
	}
	return e.runtime.Start(ctx, m, symbols)
}

// Run executes m over input until it halts. The record is saved to the
// store when one is configured.
func (e *Engine) Run(ctx context.Context, m *machine.Machine, input string) (*domain.Record, error) {
	s, err := e.Start(ctx, m, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.Run(ctx); err != nil {
		return nil, err
	}
	return e.Save(ctx, s, input)
}

// Save turns the current state of a session into a record and persists it
// when a store is configured.
func (e *Engine) Save(ctx context.Context, s *Session, input string) (*domain.Record, error) {
	record := &domain.Record{
		ID:        s.ID(),
		Machine:   s.Machine().Name(),
		Input:     input,
		Result:    s.Result(),
		CreatedAt: time.Now().UTC(),
	}

	if e.store != nil {
		if err := e.store.Save(ctx, record); err != nil {
			e.logger.ErrorContext(ctx, "failed to persist run", "run_id", record.ID, "err", err)
			return nil, fmt.Errorf("failed to persist run %s: %w", record.ID, err)
		}
	}
	return record, nil
}

// RunBatch runs m over every input concurrently. Records are returned in
// input order. The first error cancels the remaining runs.
func (e *Engine) RunBatch(ctx context.Context, m *machine.Machine, inputs []string) ([]*domain.Record, error) {
	records := make([]*domain.Record, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if e.parallelism > 0 {
		g.SetLimit(e.parallelism)
	}

	for i, input := range inputs {
		g.Go(func() error {
			record, err := e.Run(gctx, m, input)
			if err != nil {
				return fmt.Errorf("input %d (%q): %w", i, input, err)
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
