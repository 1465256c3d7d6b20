package domain

import (
	"fmt"
	"strings"
)

// Symbol is a single tape cell value drawn from a finite alphabet.
type Symbol string

// State is a named control state of a machine.
type State string

// Direction is the head movement applied after a transition.
type Direction string

const (
	Left  Direction = "L"
	Right Direction = "R"
	Stay  Direction = "S"
)

// ParseDirection normalizes the spellings accepted in definition files.
// An empty value means Stay: the move of a rule is optional.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "L", "LEFT":
		return Left, nil
	case "R", "RIGHT":
		return Right, nil
	case "", "S", "N", "STAY", "NONE":
		return Stay, nil
	}
	return "", fmt.Errorf("unknown direction %q", raw)
}

// Offset returns the head displacement of the direction.
func (d Direction) Offset() int {
	switch d {
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

// Valid reports whether d is one of the canonical directions.
func (d Direction) Valid() bool {
	return d == Left || d == Right || d == Stay
}

// Tokenize splits an input string into one symbol per rune.
func Tokenize(input string) []Symbol {
	symbols := make([]Symbol, 0, len(input))
	for _, r := range input {
		symbols = append(symbols, Symbol(r))
	}
	return symbols
}

// Join concatenates symbols back into a string.
func Join(symbols []Symbol) string {
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(string(s))
	}
	return sb.String()
}
