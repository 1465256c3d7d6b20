package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(dir string) (Options, *bytes.Buffer) {
	var out bytes.Buffer
	return Options{Dir: dir, Out: &out, Err: &out}, &out
}

func writeDefinition(t *testing.T, dir, name string, def domain.Definition) string {
	t.Helper()
	data, err := file.Encode(def, file.FormatJSON)
	require.NoError(t, err)
	return testutils.WriteFile(t, dir, name+".json", string(data))
}

func TestRun_PlainOutput(t *testing.T) {
	dir := t.TempDir()
	path := testutils.WriteFile(t, dir, "zeros.json", testutils.ZeroNOneNJSON)

	opts, out := testOptions(dir)
	opts.LeftBounded = true

	err := Run(context.Background(), opts, path, []string{"0011", "001"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ACCEPTED 0011 -> XXYY (q3, 13 steps)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "REJECTED 001 -> "), lines[1])
}

func TestRun_TraceAndStepLimit(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "looper", testutils.Looper())

	opts, out := testOptions(dir)
	opts.StepLimit = 3
	opts.Trace = true

	err := Run(context.Background(), opts, path, []string{"a"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5, "summary plus steps + 1 trace lines")
	assert.Contains(t, lines[0], "HALTED a -> a")
	assert.Contains(t, lines[0], "step_limit_exceeded")
	assert.Contains(t, lines[1], "[a]")
}

func TestRun_EmptyInputByDefault(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())

	opts, out := testOptions(dir)
	require.NoError(t, Run(context.Background(), opts, "unary", nil))
	assert.Equal(t, "ACCEPTED ε -> 1 (done, 1 steps)\n", out.String())
}

func TestRun_JSON(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())

	t.Run("Single Input", func(t *testing.T) {
		opts, out := testOptions(dir)
		opts.JSON = true

		require.NoError(t, Run(context.Background(), opts, "unary", []string{"11"}))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "111", got["output"])
		assert.Equal(t, "unary", got["machine"])
		result := got["result"].(map[string]any)
		assert.Equal(t, "accepted", result["outcome"])
		assert.Nil(t, result["trace"], "trace is only included on request")
	})

	t.Run("Batch With Trace", func(t *testing.T) {
		opts, out := testOptions(dir)
		opts.JSON = true
		opts.Trace = true

		require.NoError(t, Run(context.Background(), opts, "unary", []string{"1", "111"}))

		var got []RunOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "11", got[0].Output)
		assert.Equal(t, "1111", got[1].Output)
		assert.Len(t, got[1].Result.Trace, got[1].Result.Steps+1)
	})
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())
	ctx := context.Background()

	t.Run("Unknown Machine", func(t *testing.T) {
		opts, _ := testOptions(dir)
		err := Run(ctx, opts, "missing", nil)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("No Catalog Directory", func(t *testing.T) {
		opts, _ := testOptions("")
		err := Run(ctx, opts, "unary", nil)
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})

	t.Run("Invalid Input", func(t *testing.T) {
		opts, _ := testOptions(dir)
		err := Run(ctx, opts, "unary", []string{"12"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Invalid Definition", func(t *testing.T) {
		def := testutils.UnaryIncrement()
		def.BlankSymbol = "#"
		writeDefinition(t, dir, "broken", def)

		opts, _ := testOptions(dir)
		err := Run(ctx, opts, "broken", nil)
		assert.ErrorIs(t, err, domain.ErrBlankNotInAlphabet)
	})

	t.Run("Invalid Log Level", func(t *testing.T) {
		opts, _ := testOptions(dir)
		opts.LogLevel = "loud"
		err := Run(ctx, opts, "unary", nil)
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())

	broken := testutils.UnaryIncrement()
	broken.BlankSymbol = "#"
	broken.InitialState = "nowhere"
	writeDefinition(t, dir, "broken", broken)

	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		opts, out := testOptions(dir)
		require.NoError(t, Validate(ctx, opts, "unary"))
		assert.Contains(t, out.String(), `Machine "unary" is valid!`)
		assert.Contains(t, out.String(), "2 states, 2 transitions")
	})

	t.Run("Every Violation Is Listed", func(t *testing.T) {
		opts, out := testOptions(dir)
		err := Validate(ctx, opts, "broken")
		require.ErrorIs(t, err, ErrInvalidDefinition)
		assert.Contains(t, out.String(), "2 violation(s)")
		assert.Contains(t, out.String(), "blank symbol not in alphabet")
		assert.Contains(t, out.String(), "initial state not in states")
	})

	t.Run("JSON", func(t *testing.T) {
		opts, out := testOptions(dir)
		opts.JSON = true
		err := Validate(ctx, opts, "broken")
		require.ErrorIs(t, err, ErrInvalidDefinition)

		var report ValidationReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 2)
		assert.Equal(t, string(domain.BlankNotInAlphabet), report.Errors[0].Kind)
		assert.Equal(t, "blank_symbol", report.Errors[0].Field)
		assert.Equal(t, string(domain.InitialStateNotInStates), report.Errors[1].Kind)
	})
}

func TestGraph(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())
	ctx := context.Background()

	t.Run("Plain Diagram", func(t *testing.T) {
		opts, out := testOptions(dir)
		require.NoError(t, Graph(ctx, opts, "unary"))
		assert.True(t, strings.HasPrefix(out.String(), "graph LR\n"))
		assert.NotContains(t, out.String(), "classDef")
	})

	t.Run("With Run Overlay", func(t *testing.T) {
		opts, out := testOptions(dir)
		require.NoError(t, Graph(ctx, opts, "unary", "11"))
		assert.Contains(t, out.String(), "class scan visited;")
		assert.Contains(t, out.String(), "class done current;")
	})
}

func TestStep(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "zeros.json", testutils.ZeroNOneNJSON)

	opts, out := testOptions(dir)
	commands := strings.NewReader("n\nu\nu\nx\nr\nn\n")

	require.NoError(t, Step(context.Background(), opts, "zeros", "0011", commands))

	text := out.String()
	assert.Contains(t, text, `zeros over "0011"`)
	assert.Contains(t, text, "X[0]11")
	assert.Contains(t, text, "Nothing to undo.")
	assert.Contains(t, text, `Unknown command "x"`)
	assert.Equal(t, 2, strings.Count(text, "Halted: ACCEPTED in q3 after 13 steps"), "run, then next on a halted machine")
	assert.NotContains(t, text, "Run saved")
}

func TestStep_QuitBeforeHalting(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())

	opts, out := testOptions(dir)
	require.NoError(t, Step(context.Background(), opts, "unary", "1", strings.NewReader("n\nq\nn\n")))

	assert.Equal(t, 1, strings.Count(out.String(), "   1  scan  @1"), "commands after quit are ignored")
	assert.NotContains(t, out.String(), "Halted")
}

func TestStep_CancelWhileWaitingForInput(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	opts, _ := testOptions(dir)

	done := make(chan error, 1)
	go func() { done <- Step(ctx, opts, "unary", "1", pr) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("step did not return after cancellation")
	}
}

func TestReadLines_StopsWhenDone(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan struct{})
	lines, readErr := readLines(pr, done)

	go pw.Write([]byte("n\n"))
	assert.Equal(t, "n", <-lines)

	close(done)
	_, err := pw.Write([]byte("n\n"))
	require.NoError(t, err)

	select {
	case _, ok := <-lines:
		assert.False(t, ok, "reader delivered a line after done")
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop after done")
	}
	assert.NoError(t, *readErr)
}

func TestStepAndHistory_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())
	ctx := context.Background()

	opts, out := testOptions(dir)
	opts.RedisURL = "redis://" + mr.Addr()

	require.NoError(t, Step(ctx, opts, "unary", "11", strings.NewReader("r\n")))
	assert.Contains(t, out.String(), "Run saved: ")

	require.NoError(t, Run(ctx, opts, "unary", []string{"1"}))

	out.Reset()
	require.NoError(t, History(ctx, opts, ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	// id, date, time, machine, input, outcome
	byInput := make(map[string][]string)
	for _, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 6, line)
		assert.Equal(t, "unary", fields[3])
		assert.Equal(t, "accepted", fields[5])
		byInput[fields[4]] = fields
	}
	require.Contains(t, byInput, "11")
	require.Contains(t, byInput, "1")

	out.Reset()
	require.NoError(t, History(ctx, opts, byInput["1"][0]))
	assert.Equal(t, "ACCEPTED 1 -> 11 (done, 2 steps)\n", out.String())

	err := History(ctx, opts, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestHistory_RequiresStore(t *testing.T) {
	opts, _ := testOptions(t.TempDir())
	assert.ErrorIs(t, History(context.Background(), opts, ""), ErrNoStore)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "unary", testutils.UnaryIncrement())
	writeDefinition(t, dir, "scanner", testutils.BinaryScanner())
	ctx := context.Background()

	opts, out := testOptions(dir)
	require.NoError(t, List(ctx, opts))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "scanner"))
	assert.True(t, strings.HasPrefix(lines[1], "unary"))

	opts.JSON = true
	out.Reset()
	require.NoError(t, List(ctx, opts))
	var names []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &names))
	assert.Equal(t, []string{"scanner", "unary"}, names)
}

func TestCreateLogger(t *testing.T) {
	logger, debug, err := createLogger("")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, debug)

	_, debug, err = createLogger("debug")
	require.NoError(t, err)
	assert.True(t, debug)

	_, _, err = createLogger("verbose")
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	mr := miniredis.RunT(t)

	opts, _ := testOptions(t.TempDir())
	opts.StepLimit = 42
	opts.RedisURL = "redis://" + mr.Addr()

	eng, logger, closeStore, err := NewEngine(opts)
	require.NoError(t, err)
	defer closeStore()

	assert.NotNil(t, logger)
	assert.Equal(t, 42, eng.StepLimit())
	assert.NotNil(t, eng.Store())

	opts.RedisURL = "mysql://nope"
	_, _, _, err = NewEngine(opts)
	assert.ErrorContains(t, err, "run store")
}
