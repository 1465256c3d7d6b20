package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an input contains a symbol outside the input alphabet.
var ErrInvalidInput = errors.New("invalid input")

// ErrNothingToUndo is returned when undo is requested on a session with no applied steps.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrMachineNotFound is returned when a catalog has no machine with the requested name.
var ErrMachineNotFound = errors.New("machine not found")

// ErrSessionNotFound is returned when no live session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrStepLimitTooHigh is returned when a caller asks for more steps than a server allows.
var ErrStepLimitTooHigh = errors.New("step limit too high")

// DefinitionErrorKind enumerates the ways a 7-tuple can be invalid.
type DefinitionErrorKind string

const (
	UnknownState            DefinitionErrorKind = "unknown_state"
	UnknownSymbol           DefinitionErrorKind = "unknown_symbol"
	BlankNotInAlphabet      DefinitionErrorKind = "blank_not_in_alphabet"
	BlankInInputSymbols     DefinitionErrorKind = "blank_in_input_symbols"
	InitialStateNotInStates DefinitionErrorKind = "initial_state_not_in_states"
	FinalStateNotInStates   DefinitionErrorKind = "final_state_not_in_states"
	DuplicateTransition     DefinitionErrorKind = "duplicate_transition"
	InvalidDirection        DefinitionErrorKind = "invalid_direction"
)

// Sentinels matching each kind, usable with errors.Is.
var (
	ErrUnknownState            = errors.New("unknown state")
	ErrUnknownSymbol           = errors.New("unknown symbol")
	ErrBlankNotInAlphabet      = errors.New("blank symbol not in alphabet")
	ErrBlankInInputSymbols     = errors.New("blank symbol in input symbols")
	ErrInitialStateNotInStates = errors.New("initial state not in states")
	ErrFinalStateNotInStates   = errors.New("final state not in states")
	ErrDuplicateTransition     = errors.New("duplicate transition")
	ErrInvalidDirection        = errors.New("invalid direction")
)

var kindSentinels = map[DefinitionErrorKind]error{
	UnknownState:            ErrUnknownState,
	UnknownSymbol:           ErrUnknownSymbol,
	BlankNotInAlphabet:      ErrBlankNotInAlphabet,
	BlankInInputSymbols:     ErrBlankInInputSymbols,
	InitialStateNotInStates: ErrInitialStateNotInStates,
	FinalStateNotInStates:   ErrFinalStateNotInStates,
	DuplicateTransition:     ErrDuplicateTransition,
	InvalidDirection:        ErrInvalidDirection,
}

// DefinitionError describes a single violation found while validating a Definition.
type DefinitionError struct {
	Kind DefinitionErrorKind
	// Field locates the offending value, e.g. "transitions[3].next_state".
	Field  string
	Value  string
	Detail string
}

func (e *DefinitionError) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s %q", msg, e.Field, e.Value)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap exposes the sentinel of the error kind.
func (e *DefinitionError) Unwrap() error {
	return kindSentinels[e.Kind]
}

// InputError reports the first input symbol outside the input alphabet.
type InputError struct {
	Position int
	Symbol   Symbol
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: symbol %q at position %d is not an input symbol", e.Symbol, e.Position)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap lets errors.Is and errors.As inspect every failure.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
