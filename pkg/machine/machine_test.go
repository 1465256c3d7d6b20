package machine_test

import (
	"errors"
	"testing"

	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Valid(t *testing.T) {
	m, err := machine.New(testutils.BinaryScanner())
	require.NoError(t, err)

	assert.Equal(t, "binary-scanner", m.Name())
	assert.Equal(t, domain.State("q0"), m.Initial())
	assert.Equal(t, domain.Symbol("B"), m.Blank())
	assert.True(t, m.IsFinal("q1"))
	assert.False(t, m.IsFinal("q0"))
	assert.Equal(t, 3, m.Table().Len())

	rule, ok := m.Lookup("q0", "B")
	require.True(t, ok)
	assert.Equal(t, domain.Left, rule.Move)
}

func TestNew_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Definition)
		want   error
	}{
		{
			name: "unknown next state",
			mutate: func(d *domain.Definition) {
				d.Transitions[0].Next = "q9"
			},
			want: domain.ErrUnknownState,
		},
		{
			name: "unknown from state",
			mutate: func(d *domain.Definition) {
				d.Transitions[1].From = "qx"
			},
			want: domain.ErrUnknownState,
		},
		{
			name: "unknown written symbol",
			mutate: func(d *domain.Definition) {
				d.Transitions[0].Write = "7"
			},
			want: domain.ErrUnknownSymbol,
		},
		{
			name: "input symbol outside alphabet",
			mutate: func(d *domain.Definition) {
				d.InputSymbols = append(d.InputSymbols, "2")
			},
			want: domain.ErrUnknownSymbol,
		},
		{
			name: "blank not in alphabet",
			mutate: func(d *domain.Definition) {
				d.BlankSymbol = "_"
			},
			want: domain.ErrBlankNotInAlphabet,
		},
		{
			name: "blank among input symbols",
			mutate: func(d *domain.Definition) {
				d.InputSymbols = append(d.InputSymbols, "B")
			},
			want: domain.ErrBlankInInputSymbols,
		},
		{
			name: "initial state not declared",
			mutate: func(d *domain.Definition) {
				d.InitialState = "start"
			},
			want: domain.ErrInitialStateNotInStates,
		},
		{
			name: "final state not declared",
			mutate: func(d *domain.Definition) {
				d.FinalStates = []domain.State{"accept"}
			},
			want: domain.ErrFinalStateNotInStates,
		},
		{
			name: "duplicate key",
			mutate: func(d *domain.Definition) {
				d.Transitions = append(d.Transitions, domain.Transition{
					From: "q0", Read: "0", Write: "1", Move: domain.Right, Next: "q1",
				})
			},
			want: domain.ErrDuplicateTransition,
		},
		{
			name: "bad direction",
			mutate: func(d *domain.Definition) {
				d.Transitions[0].Move = "up"
			},
			want: domain.ErrInvalidDirection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testutils.BinaryScanner()
			tt.mutate(&def)

			m, err := machine.New(def)
			require.Error(t, err)
			assert.Nil(t, m, "no partial machine may be returned")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, machine.IsDefinitionError(err))
		})
	}
}

func TestNew_ReportsEveryViolation(t *testing.T) {
	def := testutils.BinaryScanner()
	def.BlankSymbol = "_"
	def.InitialState = "start"
	def.Transitions[2].Next = "q7"

	_, err := machine.New(def)
	require.Error(t, err)
	assert.Len(t, domain.ValidationErrors(err), 3)
}

func TestNew_EmptyMoveMeansStay(t *testing.T) {
	def := testutils.BinaryScanner()
	def.Transitions[0].Move = ""

	m, err := machine.New(def)
	require.NoError(t, err)

	rule, _ := m.Lookup("q0", "0")
	assert.Equal(t, domain.Stay, rule.Move)
}

func TestMachine_ParseInput(t *testing.T) {
	m := machine.MustNew(testutils.BinaryScanner())

	symbols, err := m.ParseInput("0110")
	require.NoError(t, err)
	assert.Len(t, symbols, 4)

	_, err = m.ParseInput("01B")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var inputErr *domain.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 2, inputErr.Position)
	assert.Equal(t, domain.Symbol("B"), inputErr.Symbol)
}

func TestMachine_DefinitionRoundTrip(t *testing.T) {
	def := testutils.BinaryScanner()
	def.Alphabet = append(def.Alphabet, "0")

	m := machine.MustNew(def)
	out := m.Definition()

	assert.Equal(t, []domain.Symbol{"0", "1", "B"}, out.Alphabet, "duplicates collapse, order is kept")
	assert.Equal(t, def.Transitions, out.Transitions)

	again, err := machine.New(out)
	require.NoError(t, err)
	assert.Equal(t, m.States(), again.States())
}

func TestMustNew_Panics(t *testing.T) {
	def := testutils.BinaryScanner()
	def.InitialState = ""
	assert.Panics(t, func() { machine.MustNew(def) })
}
