// Package testutils holds machine fixtures shared by the test suites.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/require"
)

// ZeroNOneNJSON recognizes 0^n 1^n. Its tape is meant to be left-bounded.
const ZeroNOneNJSON = `{"alphabet":["0","1","X","Y","B"],"blank_symbol":"B","input_symbols":["0","1"],"states":["q0","q1","q2","q3","q4"],"initial_state":"q0","final_states":["q3"],"transitions":[{"from_state":"q0","read_symbol":"0","write_symbol":"X","move_to":"R","next_state":"q1"},{"from_state":"q0","read_symbol":"B","write_symbol":"B","move_to":"R","next_state":"q3"},{"from_state":"q0","read_symbol":"Y","write_symbol":"Y","move_to":"R","next_state":"q4"},{"from_state":"q1","read_symbol":"0","write_symbol":"0","move_to":"R","next_state":"q1"},{"from_state":"q1","read_symbol":"Y","write_symbol":"Y","move_to":"R","next_state":"q1"},{"from_state":"q1","read_symbol":"1","write_symbol":"Y","move_to":"L","next_state":"q2"},{"from_state":"q2","read_symbol":"0","write_symbol":"0","move_to":"L","next_state":"q2"},{"from_state":"q2","read_symbol":"Y","write_symbol":"Y","move_to":"L","next_state":"q2"},{"from_state":"q2","read_symbol":"X","write_symbol":"X","move_to":"R","next_state":"q0"},{"from_state":"q4","read_symbol":"Y","write_symbol":"Y","move_to":"R","next_state":"q4"},{"from_state":"q4","read_symbol":"B","write_symbol":"B","move_to":"R","next_state":"q3"}]}`

// BinaryScanner walks right over a binary string and steps back once onto
// the last symbol, halting in its final state.
func BinaryScanner() domain.Definition {
	return domain.Definition{
		Name:         "binary-scanner",
		Alphabet:     []domain.Symbol{"0", "1", "B"},
		BlankSymbol:  "B",
		InputSymbols: []domain.Symbol{"0", "1"},
		States:       []domain.State{"q0", "q1"},
		InitialState: "q0",
		FinalStates:  []domain.State{"q1"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "0", Write: "0", Move: domain.Right, Next: "q0"},
			{From: "q0", Read: "1", Write: "1", Move: domain.Right, Next: "q0"},
			{From: "q0", Read: "B", Write: "B", Move: domain.Left, Next: "q1"},
		},
	}
}

// UnaryIncrement appends a 1 to a unary number.
func UnaryIncrement() domain.Definition {
	return domain.Definition{
		Name:         "unary-increment",
		Alphabet:     []domain.Symbol{"1", "_"},
		BlankSymbol:  "_",
		InputSymbols: []domain.Symbol{"1"},
		States:       []domain.State{"scan", "done"},
		InitialState: "scan",
		FinalStates:  []domain.State{"done"},
		Transitions: []domain.Transition{
			{From: "scan", Read: "1", Write: "1", Move: domain.Right, Next: "scan"},
			{From: "scan", Read: "_", Write: "1", Move: domain.Stay, Next: "done"},
		},
	}
}

// Looper never halts: its only state is both initial and final and has a
// rule for every symbol.
func Looper() domain.Definition {
	return domain.Definition{
		Name:         "looper",
		Alphabet:     []domain.Symbol{"a", "B"},
		BlankSymbol:  "B",
		InputSymbols: []domain.Symbol{"a"},
		States:       []domain.State{"q0"},
		InitialState: "q0",
		FinalStates:  []domain.State{"q0"},
		Transitions: []domain.Transition{
			{From: "q0", Read: "a", Write: "a", Move: domain.Right, Next: "q0"},
			{From: "q0", Read: "B", Write: "B", Move: domain.Right, Next: "q0"},
		},
	}
}

// WriteFile writes content into dir/name and returns the absolute path.
// It fails the test immediately on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(dir, name))
	require.NoError(t, err, "Failed to resolve fixture path")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write fixture")

	return path
}
