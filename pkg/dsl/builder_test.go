package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/domain"
)

func TestBuilder_BinaryScanner(t *testing.T) {
	b := New("binary-scanner").
		Alphabet("0", "1", "B").
		Blank("B").
		Input("0", "1").
		States("q0", "q1").
		Initial("q0").
		Final("q1").
		On("q0", "0").Right().Go("q0").
		On("q0", "1").Right().Go("q0").
		On("q0", "B").Left().Go("q1")

	def := b.Definition()
	want := testutils.BinaryScanner()
	if len(def.Transitions) != len(want.Transitions) {
		t.Fatalf("Expected %d transitions, got %d", len(want.Transitions), len(def.Transitions))
	}
	for i := range want.Transitions {
		if def.Transitions[i] != want.Transitions[i] {
			t.Errorf("transitions[%d]: expected %s, got %s", i, want.Transitions[i], def.Transitions[i])
		}
	}

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if m.Name() != "binary-scanner" {
		t.Errorf("Expected name 'binary-scanner', got '%s'", m.Name())
	}
	if !m.IsFinal("q1") {
		t.Error("Expected q1 to be final")
	}
}

func TestBuilder_RuleDefaults(t *testing.T) {
	def := New("defaults").
		On("s", "1").Go("s").
		On("s", "_").Write("1").Go("h").
		Definition()

	first := def.Transitions[0]
	if first.Write != "1" || first.Move != domain.Stay {
		t.Errorf("Expected write '1' and stay, got %s", first)
	}
	second := def.Transitions[1]
	if second.Write != "1" || second.Next != "h" {
		t.Errorf("Unexpected second rule %s", second)
	}
}

func TestBuilder_DefinitionIsCopy(t *testing.T) {
	b := New("copy").Alphabet("a", "B").States("q")
	def := b.Definition()
	def.Alphabet[0] = "z"
	def.States = append(def.States, "extra")

	again := b.Definition()
	if again.Alphabet[0] != "a" {
		t.Errorf("Expected alphabet to be unaffected, got %v", again.Alphabet)
	}
	if len(again.States) != 1 {
		t.Errorf("Expected 1 state, got %v", again.States)
	}
}

func TestBuilder_InvalidMachine(t *testing.T) {
	_, err := New("broken").
		Alphabet("0", "B").
		Blank("B").
		States("q0").
		Initial("q0").
		On("q0", "0").Right().Go("missing").
		On("q0", "0").Left().Go("q0").
		Build()
	if err == nil {
		t.Fatal("Expected Build() to fail")
	}

	if !errors.Is(err, domain.ErrUnknownState) {
		t.Errorf("Expected ErrUnknownState, got %v", err)
	}
	if !errors.Is(err, domain.ErrDuplicateTransition) {
		t.Errorf("Expected ErrDuplicateTransition, got %v", err)
	}
}
