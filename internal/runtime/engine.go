package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turing/internal/tape"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/google/uuid"
)

// DefaultStepLimit bounds runs that do not configure a limit.
const DefaultStepLimit = 10_000

// Engine is the core Turing machine runner. It holds run configuration
// only; all mutable state lives in the Sessions it starts.
type Engine struct {
	stepLimit   int
	leftBounded bool
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithStepLimit sets the maximum number of transitions a run may apply.
// Non-positive values select DefaultStepLimit.
func WithStepLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.stepLimit = n
		}
	}
}

// WithLeftBoundedTape forbids the head from moving left of cell 0.
// A rule that would do so rejects the input.
func WithLeftBoundedTape(bounded bool) EngineOption {
	return func(e *Engine) {
		e.leftBounded = bounded
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		stepLimit: DefaultStepLimit,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StepLimit returns the configured step budget.
func (e *Engine) StepLimit() int {
	return e.stepLimit
}

// Start validates the input against the input alphabet and returns a session
// at the initial configuration: tape seeded from position 0, head at 0,
// current state set to the initial state, trace holding snapshot 0.
func (e *Engine) Start(ctx context.Context, m *machine.Machine, input []domain.Symbol) (*Session, error) {
	if m == nil {
		return nil, fmt.Errorf("machine is required")
	}
	if err := m.ValidateInput(input); err != nil {
		return nil, err
	}

	t := tape.New(m.Blank())
	t.Seed(input)

	s := &Session{
		id:          uuid.NewString(),
		engine:      e,
		machine:     m,
		tape:        t,
		state:       m.Initial(),
		limit:       e.stepLimit,
		leftBounded: e.leftBounded,
		status:      domain.StatusRunning,
	}
	s.logger = e.logger.With("machine", m.Name(), "run_id", s.id)
	s.record()

	s.logger.DebugContext(ctx, "run started", "input", domain.Join(input))
	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: e.event(domain.EventRunStart, s),
			Input:     domain.Join(input),
		})
	}

	return s, nil
}

// Run drives a fresh session until it halts and returns its result.
// Error conditions are a nil machine, invalid input and a cancelled context;
// halting without a rule and exceeding the step limit are outcomes.
func (e *Engine) Run(ctx context.Context, m *machine.Machine, input []domain.Symbol) (*domain.Result, error) {
	s, err := e.Start(ctx, m, input)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

func (e *Engine) emitStep(ctx context.Context, s *Session, rule domain.Transition) {
	if e.hooks.OnStep == nil {
		return
	}
	e.hooks.OnStep(ctx, &domain.StepEvent{
		EventBase:  e.event(domain.EventStep, s),
		Step:       s.steps,
		Transition: rule,
		Head:       s.tape.Head(),
	})
}

func (e *Engine) emitHalt(ctx context.Context, s *Session) {
	if s.reason == domain.ReasonStepLimitExceeded {
		s.logger.WarnContext(ctx, "step limit exceeded", "limit", s.limit, "state", s.state)
	} else {
		s.logger.DebugContext(ctx, "run halted", "outcome", s.status, "reason", s.reason, "state", s.state, "steps", s.steps)
	}
	if e.hooks.OnHalt == nil {
		return
	}
	e.hooks.OnHalt(ctx, &domain.HaltEvent{
		EventBase: e.event(domain.EventHalt, s),
		Outcome:   s.status,
		Reason:    s.reason,
		State:     s.state,
		Steps:     s.steps,
	})
}

func (e *Engine) event(kind domain.EventType, s *Session) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      kind,
		RunID:     s.id,
		Machine:   s.machine.Name(),
	}
}
