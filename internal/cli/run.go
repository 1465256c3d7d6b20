package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/pkg/domain"
)

// RunOutput is the JSON form of a finished run.
type RunOutput struct {
	*domain.Record
	Output string `json:"output"`
}

// Run executes the machine referenced by ref over every input and prints the
// outcomes. Without inputs the machine runs once over the empty input.
func Run(ctx context.Context, opts Options, ref string, inputs []string) error {
	def, err := LoadDefinition(ctx, ref, opts.Dir)
	if err != nil {
		return err
	}
	m, err := turing.Compile(def)
	if err != nil {
		return err
	}

	eng, closeStore, err := setup(opts, def)
	if err != nil {
		return err
	}
	defer closeStore()

	if len(inputs) == 0 {
		inputs = []string{""}
	}
	records, err := eng.RunBatch(ctx, m, inputs)
	if err != nil {
		return err
	}

	return printRecords(opts, def, records)
}

func printRecords(opts Options, def domain.Definition, records []*domain.Record) error {
	w := opts.out()

	if opts.JSON {
		out := make([]RunOutput, len(records))
		for i, r := range records {
			out[i] = present(r, opts.Trace)
		}
		if len(out) == 1 {
			return writeJSON(w, out[0])
		}
		return writeJSON(w, out)
	}

	if opts.rich() {
		render := tui.NewRenderer()
		for _, r := range records {
			rendered, err := render(tui.Report(def, r, opts.Trace))
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
			fmt.Fprint(w, rendered)
		}
		return nil
	}

	for _, r := range records {
		printOutcome(w, r)
		if opts.Trace {
			for _, line := range tui.TraceLines(r.Result.Trace, opts.profile()) {
				fmt.Fprintln(w, "  "+line)
			}
		}
	}
	return nil
}

// printOutcome writes a one-line summary, e.g. "ACCEPTED 0011 -> XXYY (q3, 11 steps)".
func printOutcome(w io.Writer, r *domain.Record) {
	res := r.Result
	line := fmt.Sprintf("%s %s -> %s (%s, %d steps", tui.Tag(res.Outcome), orEpsilon(r.Input), orEpsilon(res.Output()), res.FinalState, res.Steps)
	if res.Reason != "" {
		line += ", " + string(res.Reason)
	}
	fmt.Fprintln(w, line+")")
}

func present(r *domain.Record, withTrace bool) RunOutput {
	if !withTrace {
		r = r.Clone()
		r.Result.Trace = nil
	}
	return RunOutput{Record: r, Output: r.Result.Output()}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orEpsilon(s string) string {
	if s == "" {
		return "ε"
	}
	return s
}
