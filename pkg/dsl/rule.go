package dsl

import "github.com/aretw0/turing/pkg/domain"

// RuleBuilder configures a single transition.
// By default the rule rewrites the symbol it read and keeps the head still.
type RuleBuilder struct {
	rule    domain.Transition
	builder *Builder
}

// Write sets the symbol written before moving.
func (r *RuleBuilder) Write(symbol string) *RuleBuilder {
	r.rule.Write = domain.Symbol(symbol)
	return r
}

// Move sets the head direction.
func (r *RuleBuilder) Move(dir domain.Direction) *RuleBuilder {
	r.rule.Move = dir
	return r
}

// Left moves the head one cell left.
func (r *RuleBuilder) Left() *RuleBuilder { return r.Move(domain.Left) }

// Right moves the head one cell right.
func (r *RuleBuilder) Right() *RuleBuilder { return r.Move(domain.Right) }

// Stay keeps the head in place.
func (r *RuleBuilder) Stay() *RuleBuilder { return r.Move(domain.Stay) }

// Go records the rule with its next state and returns to the machine builder.
func (r *RuleBuilder) Go(next string) *Builder {
	r.rule.Next = domain.State(next)
	r.builder.def.Transitions = append(r.builder.def.Transitions, r.rule)
	return r.builder
}
