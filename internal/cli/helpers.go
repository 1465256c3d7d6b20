package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// Without a level, logs are discarded.
func createLogger(level string) (*slog.Logger, bool, error) {
	if level == "" {
		return logging.NewNop(), false, nil
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return nil, false, err
	}
	return logging.New(parsed), parsed <= slog.LevelDebug, nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.Debug("Run started", "run_id", e.RunID, "machine", e.Machine, "input", e.Input)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.Debug("Run halted", "run_id", e.RunID, "outcome", e.Outcome, "reason", e.Reason, "steps", e.Steps)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Step", "run_id", e.RunID, "step", e.Step, "rule", e.Transition.String(), "head", e.Head)
		},
	}
}

// LoadDefinition resolves ref as a definition file, or as a machine name in
// the catalog directory when no such file exists.
func LoadDefinition(ctx context.Context, ref, dir string) (domain.Definition, error) {
	if _, err := os.Stat(ref); err == nil {
		return file.Load(ref)
	} else if !errors.Is(err, os.ErrNotExist) {
		return domain.Definition{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}

	if dir == "" {
		return domain.Definition{}, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, ref)
	}
	return file.NewCatalog(dir).Get(ctx, ref)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// rich reports whether styled output should be written to w.
func (o Options) rich() bool {
	return !o.Plain && !o.JSON && isTerminal(o.out())
}

// profile returns the color profile used for tape highlighting.
func (o Options) profile() termenv.Profile {
	if !o.rich() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
