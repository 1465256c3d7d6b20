package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/internal/tape"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// Session is a single run of a machine over one input.
// It exclusively owns its tape and trace; it is not safe for concurrent use.
type Session struct {
	id      string
	engine  *Engine
	machine *machine.Machine
	tape    *tape.Tape
	logger  *slog.Logger

	state       domain.State
	steps       int
	limit       int
	leftBounded bool

	status domain.Status
	reason domain.HaltReason
	trace  domain.Trace
	undos  []undo
}

// undo captures what a step overwrote.
type undo struct {
	state    domain.State
	head     int
	symbol   domain.Symbol
	min, max int
}

// Step applies at most one transition and returns the resulting status.
// Halting rules, in order:
//   - no rule for (state, symbol): accepted if the state is final, else rejected;
//   - a rule applies but the step limit is spent: halted (step_limit_exceeded);
//   - a left-bounded tape and a left move from cell 0: rejected (left_boundary).
//
// Being in a final state does not stop the machine while a rule applies.
func (s *Session) Step(ctx context.Context) domain.Status {
	if s.status != domain.StatusRunning {
		return s.status
	}

	symbol := s.tape.Read()
	rule, ok := s.machine.Lookup(s.state, symbol)
	switch {
	case !ok && s.machine.IsFinal(s.state):
		s.halt(ctx, domain.StatusAccepted, "")
		return s.status
	case !ok:
		s.halt(ctx, domain.StatusRejected, "")
		return s.status
	case s.steps >= s.limit:
		s.halt(ctx, domain.StatusHalted, domain.ReasonStepLimitExceeded)
		return s.status
	case s.leftBounded && s.tape.Head() == 0 && rule.Move == domain.Left:
		s.halt(ctx, domain.StatusRejected, domain.ReasonLeftBoundary)
		return s.status
	}

	min, max := s.tape.Bounds()
	s.undos = append(s.undos, undo{
		state:  s.state,
		head:   s.tape.Head(),
		symbol: symbol,
		min:    min,
		max:    max,
	})

	s.tape.Write(rule.Write)
	s.tape.Move(rule.Move)
	s.state = rule.Next
	s.steps++
	s.record()

	s.engine.emitStep(ctx, s, rule)
	return s.status
}

// Run steps until the session halts. The context is checked between steps.
func (s *Session) Run(ctx context.Context) (*domain.Result, error) {
	for s.Step(ctx) == domain.StatusRunning {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

// Undo reverts the last applied transition and resumes the session.
// Returns domain.ErrNothingToUndo at the initial configuration.
func (s *Session) Undo() error {
	if len(s.undos) == 0 {
		return domain.ErrNothingToUndo
	}
	u := s.undos[len(s.undos)-1]
	s.undos = s.undos[:len(s.undos)-1]

	s.tape.Restore(u.head, u.head, u.symbol, u.min, u.max)
	s.state = u.state
	s.steps--
	s.trace = s.trace[:len(s.trace)-1]
	s.status = domain.StatusRunning
	s.reason = ""
	return nil
}

// Result returns the outcome so far. Its Outcome is StatusRunning until the
// session halts. The returned value does not share memory with the session.
func (s *Session) Result() *domain.Result {
	trace := s.trace.Clone()
	last, _ := trace.Last()

	return &domain.Result{
		Outcome:    s.status,
		Reason:     s.reason,
		FinalState: s.state,
		Steps:      s.steps,
		Blank:      s.machine.Blank(),
		Tape:       last,
		Trace:      trace,
	}
}

// ID returns the run identifier.
func (s *Session) ID() string { return s.id }

// Machine returns the machine being run.
func (s *Session) Machine() *machine.Machine { return s.machine }

// Status returns StatusRunning until the session halts.
func (s *Session) Status() domain.Status { return s.status }

// Reason qualifies a halt; empty for natural halts.
func (s *Session) Reason() domain.HaltReason { return s.reason }

// State returns the current control state.
func (s *Session) State() domain.State { return s.state }

// Steps returns the number of applied transitions.
func (s *Session) Steps() int { return s.steps }

// Head returns the head position.
func (s *Session) Head() int { return s.tape.Head() }

// CanUndo reports whether at least one transition can be reverted.
func (s *Session) CanUndo() bool { return len(s.undos) > 0 }

// Snapshot returns a copy of the current configuration.
func (s *Session) Snapshot() domain.Snapshot {
	last, _ := s.trace.Last()
	return last.Clone()
}

// Trace returns a copy of the configurations recorded so far.
func (s *Session) Trace() domain.Trace {
	return s.trace.Clone()
}

func (s *Session) record() {
	offset, cells := s.tape.Snapshot()
	s.trace = append(s.trace, domain.Snapshot{
		Step:   s.steps,
		State:  s.state,
		Head:   s.tape.Head(),
		Offset: offset,
		Cells:  cells,
	})
}

func (s *Session) halt(ctx context.Context, status domain.Status, reason domain.HaltReason) {
	s.status = status
	s.reason = reason
	s.engine.emitHalt(ctx, s)
}
