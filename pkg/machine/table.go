package machine

import (
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
)

// Table is a deterministic transition function.
type Table struct {
	rules []domain.Transition
	index map[domain.Key]int
}

// NewTable indexes the rules by (state, symbol).
// Every rule whose key was already taken is reported as a DuplicateTransition.
func NewTable(rules []domain.Transition) (*Table, error) {
	t := &Table{
		rules: make([]domain.Transition, 0, len(rules)),
		index: make(map[domain.Key]int, len(rules)),
	}

	var errs []error
	declared := make(map[domain.Key]int, len(rules))
	for i, r := range rules {
		if first, ok := declared[r.Key()]; ok {
			errs = append(errs, &domain.DefinitionError{
				Kind:   domain.DuplicateTransition,
				Field:  fmt.Sprintf("transitions[%d]", i),
				Value:  r.Key().String(),
				Detail: fmt.Sprintf("already defined by transitions[%d]", first),
			})
			continue
		}
		declared[r.Key()] = i
		t.index[r.Key()] = len(t.rules)
		t.rules = append(t.rules, r)
	}
	if len(errs) > 0 {
		return nil, &domain.AggregateError{Errors: errs}
	}
	return t, nil
}

// Lookup returns the rule for (state, symbol). A false result is the
// normal halting signal, not an error.
func (t *Table) Lookup(state domain.State, symbol domain.Symbol) (domain.Transition, bool) {
	i, ok := t.index[domain.Key{State: state, Symbol: symbol}]
	if !ok {
		return domain.Transition{}, false
	}
	return t.rules[i], true
}

// Transitions returns the rules in declaration order.
func (t *Table) Transitions() []domain.Transition {
	out := make([]domain.Transition, len(t.rules))
	copy(out, t.rules)
	return out
}

// From returns the rules leaving state, in declaration order.
func (t *Table) From(state domain.State) []domain.Transition {
	var out []domain.Transition
	for _, r := range t.rules {
		if r.From == state {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}
