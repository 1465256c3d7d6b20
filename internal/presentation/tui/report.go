package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

// Report builds a Markdown summary of a run: the machine's 7-tuple, the
// tested input, the outcome tag and the final tape. When withTrace is set
// every configuration is listed in a table.
func Report(def domain.Definition, record *domain.Record, withTrace bool) string {
	res := record.Result

	var sb strings.Builder
	name := def.Name
	if name == "" {
		name = record.Machine
	}
	if name == "" {
		name = "machine"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}

	sb.WriteString("## Machine\n\n")
	fmt.Fprintf(&sb, "- **Alphabet**: %s\n", joinSymbols(def.Alphabet))
	fmt.Fprintf(&sb, "- **Blank**: `%s`\n", def.BlankSymbol)
	fmt.Fprintf(&sb, "- **Input symbols**: %s\n", joinSymbols(def.InputSymbols))
	fmt.Fprintf(&sb, "- **States**: %s\n", joinStates(def.States))
	fmt.Fprintf(&sb, "- **Initial state**: `%s`\n", def.InitialState)
	fmt.Fprintf(&sb, "- **Final states**: %s\n", joinStates(def.FinalStates))
	fmt.Fprintf(&sb, "- **Transitions**: %d\n\n", len(def.Transitions))

	sb.WriteString("## Result\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("| --- | --- |\n")
	fmt.Fprintf(&sb, "| Input | `%s` |\n", orEpsilon(record.Input))
	fmt.Fprintf(&sb, "| Outcome | **%s** |\n", Tag(res.Outcome))
	if res.Reason != "" {
		fmt.Fprintf(&sb, "| Reason | %s |\n", res.Reason)
	}
	fmt.Fprintf(&sb, "| Final state | %s |\n", res.FinalState)
	fmt.Fprintf(&sb, "| Steps | %d |\n", res.Steps)
	fmt.Fprintf(&sb, "| Tape | `%s` |\n", res.Tape.Window())
	fmt.Fprintf(&sb, "| Output | `%s` |\n", orEpsilon(res.Output()))

	if withTrace {
		sb.WriteString("\n## Trace\n\n")
		sb.WriteString("| Step | State | Head | Tape |\n")
		sb.WriteString("| ---: | --- | ---: | --- |\n")
		for _, s := range res.Trace {
			fmt.Fprintf(&sb, "| %d | %s | %d | `%s` |\n", s.Step, s.State, s.Head, TapeLine(s, termenv.Ascii))
		}
	}
	return sb.String()
}

// Tag is the upper-case label of an outcome, e.g. ACCEPTED.
func Tag(status domain.Status) string {
	return strings.ToUpper(string(status))
}

func joinSymbols(symbols []domain.Symbol) string {
	if len(symbols) == 0 {
		return "∅"
	}
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = "`" + string(s) + "`"
	}
	return strings.Join(parts, ", ")
}

func joinStates(states []domain.State) string {
	if len(states) == 0 {
		return "∅"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = "`" + string(s) + "`"
	}
	return strings.Join(parts, ", ")
}

func orEpsilon(s string) string {
	if s == "" {
		return "ε"
	}
	return s
}
