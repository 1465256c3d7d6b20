package dsl

import (
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// Builder accumulates the components of a machine definition.
type Builder struct {
	def domain.Definition
}

// New creates a builder for a machine called name.
func New(name string) *Builder {
	return &Builder{
		def: domain.Definition{Name: name},
	}
}

// Describe sets the informational description.
func (b *Builder) Describe(text string) *Builder {
	b.def.Description = text
	return b
}

// Alphabet appends symbols to the tape alphabet.
func (b *Builder) Alphabet(symbols ...string) *Builder {
	b.def.Alphabet = append(b.def.Alphabet, toSymbols(symbols)...)
	return b
}

// Blank sets the blank symbol. It must also be part of the alphabet.
func (b *Builder) Blank(symbol string) *Builder {
	b.def.BlankSymbol = domain.Symbol(symbol)
	return b
}

// Input appends symbols to the input alphabet.
func (b *Builder) Input(symbols ...string) *Builder {
	b.def.InputSymbols = append(b.def.InputSymbols, toSymbols(symbols)...)
	return b
}

// States appends states to the state set.
func (b *Builder) States(states ...string) *Builder {
	b.def.States = append(b.def.States, toStates(states)...)
	return b
}

// Initial sets the initial state.
func (b *Builder) Initial(state string) *Builder {
	b.def.InitialState = domain.State(state)
	return b
}

// Final appends accepting states.
func (b *Builder) Final(states ...string) *Builder {
	b.def.FinalStates = append(b.def.FinalStates, toStates(states)...)
	return b
}

// On starts a rule for (state, symbol). The rule is only recorded once
// Go names its next state.
func (b *Builder) On(state, symbol string) *RuleBuilder {
	return &RuleBuilder{
		builder: b,
		rule: domain.Transition{
			From:  domain.State(state),
			Read:  domain.Symbol(symbol),
			Write: domain.Symbol(symbol),
			Move:  domain.Stay,
		},
	}
}

// Definition returns a copy of the definition built so far.
func (b *Builder) Definition() domain.Definition {
	def := b.def
	def.Alphabet = append([]domain.Symbol(nil), b.def.Alphabet...)
	def.InputSymbols = append([]domain.Symbol(nil), b.def.InputSymbols...)
	def.States = append([]domain.State(nil), b.def.States...)
	def.FinalStates = append([]domain.State(nil), b.def.FinalStates...)
	def.Transitions = append([]domain.Transition(nil), b.def.Transitions...)
	return def
}

// Build validates the definition and compiles it into a machine.
func (b *Builder) Build() (*machine.Machine, error) {
	return machine.New(b.Definition())
}

func toSymbols(raw []string) []domain.Symbol {
	out := make([]domain.Symbol, len(raw))
	for i, s := range raw {
		out[i] = domain.Symbol(s)
	}
	return out
}

func toStates(raw []string) []domain.State {
	out := make([]domain.State, len(raw))
	for i, s := range raw {
		out[i] = domain.State(s)
	}
	return out
}
