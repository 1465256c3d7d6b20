package machine

import (
	"errors"
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
)

// Machine is a validated, immutable 7-tuple.
type Machine struct {
	name        string
	description string

	alphabet set[domain.Symbol]
	input    set[domain.Symbol]
	blank    domain.Symbol

	states  set[domain.State]
	initial domain.State
	finals  set[domain.State]

	table *Table
}

// New validates def and builds a Machine. On failure it returns an
// *domain.AggregateError listing every *domain.DefinitionError found;
// no partial machine is ever returned.
func New(def domain.Definition) (*Machine, error) {
	m := &Machine{
		name:        def.Name,
		description: def.Description,
		alphabet:    newSet(def.Alphabet),
		input:       newSet(def.InputSymbols),
		blank:       def.BlankSymbol,
		states:      newSet(def.States),
		initial:     def.InitialState,
		finals:      newSet(def.FinalStates),
	}

	var errs []error
	report := func(kind domain.DefinitionErrorKind, field, value, detail string) {
		errs = append(errs, &domain.DefinitionError{Kind: kind, Field: field, Value: value, Detail: detail})
	}

	if !m.alphabet.has(m.blank) {
		report(domain.BlankNotInAlphabet, "blank_symbol", string(m.blank), "")
	}
	for _, s := range m.input.items {
		if !m.alphabet.has(s) {
			report(domain.UnknownSymbol, "input_symbols", string(s), "input symbols must be a subset of the alphabet")
		}
		if s == m.blank {
			report(domain.BlankInInputSymbols, "input_symbols", string(s), "")
		}
	}
	if !m.states.has(m.initial) {
		report(domain.InitialStateNotInStates, "initial_state", string(m.initial), "")
	}
	for _, f := range m.finals.items {
		if !m.states.has(f) {
			report(domain.FinalStateNotInStates, "final_states", string(f), "")
		}
	}

	rules := make([]domain.Transition, 0, len(def.Transitions))
	for i, r := range def.Transitions {
		field := func(name string) string { return fmt.Sprintf("transitions[%d].%s", i, name) }

		if !m.states.has(r.From) {
			report(domain.UnknownState, field("from_state"), string(r.From), "")
		}
		if !m.states.has(r.Next) {
			report(domain.UnknownState, field("next_state"), string(r.Next), "")
		}
		if !m.alphabet.has(r.Read) {
			report(domain.UnknownSymbol, field("read_symbol"), string(r.Read), "")
		}
		if !m.alphabet.has(r.Write) {
			report(domain.UnknownSymbol, field("write_symbol"), string(r.Write), "")
		}

		move, err := domain.ParseDirection(string(r.Move))
		if err != nil {
			report(domain.InvalidDirection, field("move_to"), string(r.Move), "expected L, R or S")
		}
		r.Move = move
		rules = append(rules, r)
	}

	table, err := NewTable(rules)
	if err != nil {
		errs = append(errs, domain.ValidationErrors(err)...)
	}

	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}
	m.table = table
	return m, nil
}

// MustNew is like New but panics on an invalid definition.
// Intended for machines declared in code.
func MustNew(def domain.Definition) *Machine {
	m, err := New(def)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the informational name of the machine.
func (m *Machine) Name() string { return m.name }

// Description returns the informational description.
func (m *Machine) Description() string { return m.description }

// Blank returns the blank symbol.
func (m *Machine) Blank() domain.Symbol { return m.blank }

// Initial returns the initial state.
func (m *Machine) Initial() domain.State { return m.initial }

// Table returns the transition table.
func (m *Machine) Table() *Table { return m.table }

// Alphabet returns the tape alphabet in declaration order.
func (m *Machine) Alphabet() []domain.Symbol { return m.alphabet.list() }

// InputSymbols returns the input alphabet in declaration order.
func (m *Machine) InputSymbols() []domain.Symbol { return m.input.list() }

// States returns the states in declaration order.
func (m *Machine) States() []domain.State { return m.states.list() }

// FinalStates returns the accepting states in declaration order.
func (m *Machine) FinalStates() []domain.State { return m.finals.list() }

// IsFinal reports whether s is an accepting state.
func (m *Machine) IsFinal(s domain.State) bool {
	return m.finals.has(s)
}

// Lookup returns the rule for (state, symbol).
func (m *Machine) Lookup(state domain.State, symbol domain.Symbol) (domain.Transition, bool) {
	return m.table.Lookup(state, symbol)
}

// ValidateInput checks that every symbol belongs to the input alphabet.
func (m *Machine) ValidateInput(symbols []domain.Symbol) error {
	for i, s := range symbols {
		if !m.input.has(s) {
			return &domain.InputError{Position: i, Symbol: s}
		}
	}
	return nil
}

// ParseInput tokenizes input one rune per symbol and validates it.
func (m *Machine) ParseInput(input string) ([]domain.Symbol, error) {
	symbols := domain.Tokenize(input)
	if err := m.ValidateInput(symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

// Definition returns the normalized 7-tuple of the machine.
func (m *Machine) Definition() domain.Definition {
	return domain.Definition{
		Name:         m.name,
		Description:  m.description,
		Alphabet:     m.Alphabet(),
		BlankSymbol:  m.blank,
		InputSymbols: m.InputSymbols(),
		States:       m.States(),
		InitialState: m.initial,
		FinalStates:  m.FinalStates(),
		Transitions:  m.table.Transitions(),
	}
}

// IsDefinitionError reports whether err was produced by New.
func IsDefinitionError(err error) bool {
	var defErr *domain.DefinitionError
	return errors.As(err, &defErr)
}

// set is an insertion-ordered set.
type set[T comparable] struct {
	items []T
	index map[T]struct{}
}

func newSet[T comparable](items []T) set[T] {
	s := set[T]{index: make(map[T]struct{}, len(items))}
	for _, it := range items {
		if _, dup := s.index[it]; dup {
			continue
		}
		s.index[it] = struct{}{}
		s.items = append(s.items, it)
	}
	return s
}

func (s set[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s set[T]) list() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
