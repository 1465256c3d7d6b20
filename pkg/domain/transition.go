package domain

import "fmt"

// Key identifies a rule by the current state and the symbol under the head.
type Key struct {
	State  State
	Symbol Symbol
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.State, k.Symbol)
}

// Transition defines a rule of the transition function.
type Transition struct {
	From  State     `json:"from_state" yaml:"from_state" mapstructure:"from_state"`
	Read  Symbol    `json:"read_symbol" yaml:"read_symbol" mapstructure:"read_symbol"`
	Write Symbol    `json:"write_symbol" yaml:"write_symbol" mapstructure:"write_symbol"`
	Move  Direction `json:"move_to,omitempty" yaml:"move_to,omitempty" mapstructure:"move_to"`
	Next  State     `json:"next_state" yaml:"next_state" mapstructure:"next_state"`
}

// Key returns the lookup key of the rule.
func (t Transition) Key() Key {
	return Key{State: t.From, Symbol: t.Read}
}

func (t Transition) String() string {
	move := t.Move
	if move == "" {
		move = Stay
	}
	return fmt.Sprintf("δ(%s, %s) = (%s, %s, %s)", t.From, t.Read, t.Next, t.Write, move)
}
