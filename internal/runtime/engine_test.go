package runtime_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, e *runtime.Engine, def domain.Definition, input string) *domain.Result {
	t.Helper()
	m, err := machine.New(def)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), m, domain.Tokenize(input))
	require.NoError(t, err)
	return res
}

func TestEngine_BinaryScanner(t *testing.T) {
	res := run(t, runtime.NewEngine(), testutils.BinaryScanner(), "101")

	assert.Equal(t, domain.StatusAccepted, res.Outcome)
	assert.Empty(t, res.Reason)
	assert.Equal(t, domain.State("q1"), res.FinalState)
	assert.Equal(t, 4, res.Steps)
	require.Len(t, res.Trace, res.Steps+1)

	heads := make([]int, 0, len(res.Trace))
	for _, s := range res.Trace {
		heads = append(heads, s.Head)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 2}, heads, "right three times, then left once")

	assert.Equal(t, "[1]01", res.Trace[0].Window())
	assert.Equal(t, "101[B]", res.Trace[3].Window())
	assert.Equal(t, "10[1]B", res.Tape.Window())
	assert.Equal(t, "101", res.Output())
}

func TestEngine_TraceIsConsistent(t *testing.T) {
	res := run(t, runtime.NewEngine(), testutils.UnaryIncrement(), "11")

	require.Equal(t, domain.StatusAccepted, res.Outcome)
	assert.Equal(t, "111", res.Output())
	for i, s := range res.Trace {
		assert.Equal(t, i, s.Step)
	}
	assert.Equal(t, []domain.State{"scan", "scan", "scan", "done"}, res.Trace.States())
	assert.Equal(t, "11[1]", res.Tape.Window(), "stay keeps the head on the written cell")
}

func TestEngine_Rejects(t *testing.T) {
	def := testutils.BinaryScanner()
	def.FinalStates = nil

	res := run(t, runtime.NewEngine(), def, "1")
	assert.Equal(t, domain.StatusRejected, res.Outcome)
	assert.Equal(t, domain.State("q1"), res.FinalState)
}

func TestEngine_EmptyInput(t *testing.T) {
	res := run(t, runtime.NewEngine(), testutils.BinaryScanner(), "")

	assert.Equal(t, domain.StatusAccepted, res.Outcome)
	assert.Equal(t, "[B]", res.Trace[0].Window())
	assert.Equal(t, -1, res.Tape.Head)
	assert.Equal(t, "[B]B", res.Tape.Window())
}

func TestEngine_FinalStateKeepsRunning(t *testing.T) {
	res := run(t, runtime.NewEngine(runtime.WithStepLimit(25)), testutils.Looper(), "aa")

	assert.Equal(t, domain.StatusHalted, res.Outcome, "a final state with a rule must keep executing")
	assert.Equal(t, domain.ReasonStepLimitExceeded, res.Reason)
}

func TestEngine_StepLimitIsExact(t *testing.T) {
	for _, limit := range []int{1, 7, 100} {
		res := run(t, runtime.NewEngine(runtime.WithStepLimit(limit)), testutils.Looper(), "a")

		assert.Equal(t, domain.StatusHalted, res.Outcome)
		assert.Equal(t, domain.ReasonStepLimitExceeded, res.Reason)
		assert.Equal(t, limit, res.Steps)
		assert.Len(t, res.Trace, limit+1)
	}
}

func TestEngine_NaturalHaltWinsAtLimit(t *testing.T) {
	// "101" needs exactly 4 steps.
	res := run(t, runtime.NewEngine(runtime.WithStepLimit(4)), testutils.BinaryScanner(), "101")
	assert.Equal(t, domain.StatusAccepted, res.Outcome)

	res = run(t, runtime.NewEngine(runtime.WithStepLimit(3)), testutils.BinaryScanner(), "101")
	assert.Equal(t, domain.StatusHalted, res.Outcome)
	assert.Equal(t, 3, res.Steps)
}

func TestEngine_DefaultStepLimit(t *testing.T) {
	assert.Equal(t, runtime.DefaultStepLimit, runtime.NewEngine().StepLimit())
	assert.Equal(t, runtime.DefaultStepLimit, runtime.NewEngine(runtime.WithStepLimit(0)).StepLimit())
	assert.Equal(t, runtime.DefaultStepLimit, runtime.NewEngine(runtime.WithStepLimit(-3)).StepLimit())
}

func TestEngine_Deterministic(t *testing.T) {
	e := runtime.NewEngine()
	first := run(t, e, testutils.UnaryIncrement(), "1111")
	second := run(t, e, testutils.UnaryIncrement(), "1111")

	assert.Equal(t, first, second)
}

func TestEngine_InvalidInput(t *testing.T) {
	m := machine.MustNew(testutils.BinaryScanner())
	_, err := runtime.NewEngine().Run(context.Background(), m, domain.Tokenize("12"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_ZeroNOneN(t *testing.T) {
	def, err := file.Parse([]byte(testutils.ZeroNOneNJSON), file.FormatJSON)
	require.NoError(t, err)
	m, err := machine.New(def)
	require.NoError(t, err)

	e := runtime.NewEngine(runtime.WithLeftBoundedTape(true))
	cases := map[string]domain.Status{
		"01":     domain.StatusAccepted,
		"000111": domain.StatusAccepted,
		"":       domain.StatusAccepted,
		"10":     domain.StatusRejected,
		"001":    domain.StatusRejected,
		"011":    domain.StatusRejected,
	}
	for input, want := range cases {
		res, err := e.Run(context.Background(), m, domain.Tokenize(input))
		require.NoError(t, err)
		assert.Equal(t, want, res.Outcome, "input %q", input)
	}

	res, err := e.Run(context.Background(), m, domain.Tokenize("0011"))
	require.NoError(t, err)
	assert.Equal(t, "XXYY", res.Output())
}

func TestEngine_LeftBoundary(t *testing.T) {
	def := domain.Definition{
		Alphabet:     []domain.Symbol{"a", "B"},
		BlankSymbol:  "B",
		InputSymbols: []domain.Symbol{"a"},
		States:       []domain.State{"q0", "q1"},
		InitialState: "q0",
		FinalStates:  []domain.State{"q1"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "a", Write: "a", Move: domain.Left, Next: "q1"},
		},
	}

	bounded := run(t, runtime.NewEngine(runtime.WithLeftBoundedTape(true)), def, "a")
	assert.Equal(t, domain.StatusRejected, bounded.Outcome)
	assert.Equal(t, domain.ReasonLeftBoundary, bounded.Reason)
	assert.Equal(t, 0, bounded.Steps)

	unbounded := run(t, runtime.NewEngine(), def, "a")
	assert.Equal(t, domain.StatusAccepted, unbounded.Outcome)
	assert.Equal(t, -1, unbounded.Tape.Head)
	assert.Equal(t, "[B]a", unbounded.Tape.Window())
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var started, steps, halts int
	var haltEvent *domain.HaltEvent

	hooks := domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) { started++ },
		OnStep:     func(ctx context.Context, e *domain.StepEvent) { steps++ },
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			halts++
			haltEvent = e
		},
	}

	res := run(t, runtime.NewEngine(runtime.WithLifecycleHooks(hooks)), testutils.BinaryScanner(), "01")

	assert.Equal(t, 1, started)
	assert.Equal(t, res.Steps, steps)
	assert.Equal(t, 1, halts)
	require.NotNil(t, haltEvent)
	assert.Equal(t, domain.StatusAccepted, haltEvent.Outcome)
	assert.Equal(t, domain.EventHalt, haltEvent.Type)
	assert.NotEmpty(t, haltEvent.RunID)
}

func TestEngine_LogsStepLimitWithMachine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng := runtime.NewEngine(runtime.WithStepLimit(2), runtime.WithLogger(logger))

	m := machine.MustNew(testutils.Looper())
	res, err := eng.Run(context.Background(), m, domain.Tokenize("a"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusHalted, res.Outcome)

	out := buf.String()
	assert.Contains(t, out, "step limit exceeded")
	assert.Contains(t, out, "machine=looper")
	assert.Contains(t, out, "run_id=")
	assert.NotContains(t, out, "run started", "debug records are filtered at warn level")
}
