package domain

// Definition is the raw 7-tuple of a machine as delivered by a loader.
// It is not validated; see machine.New.
type Definition struct {
	// Name and Description are informational and used by catalogs.
	Name        string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	Alphabet     []Symbol     `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`
	BlankSymbol  Symbol       `json:"blank_symbol" yaml:"blank_symbol" mapstructure:"blank_symbol"`
	InputSymbols []Symbol     `json:"input_symbols" yaml:"input_symbols" mapstructure:"input_symbols"`
	States       []State      `json:"states" yaml:"states" mapstructure:"states"`
	InitialState State        `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
	FinalStates  []State      `json:"final_states" yaml:"final_states" mapstructure:"final_states"`
	Transitions  []Transition `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}
