// Package tape implements the unbounded read/write storage of a Turing machine.
package tape

import "github.com/aretw0/turing/pkg/domain"

// Tape is a sparse, bidirectionally unbounded sequence of symbols.
// Unwritten cells read as the blank symbol. Not safe for concurrent use:
// each run owns its tape.
type Tape struct {
	blank domain.Symbol
	cells map[int]domain.Symbol
	head  int
	min   int
	max   int
}

// New creates an empty tape with the head at position 0.
func New(blank domain.Symbol) *Tape {
	return &Tape{
		blank: blank,
		cells: make(map[int]domain.Symbol),
	}
}

// Seed writes symbols left to right starting at position 0.
// The head is left at position 0.
func (t *Tape) Seed(symbols []domain.Symbol) {
	for i, s := range symbols {
		t.set(i, s)
	}
	if n := len(symbols); n > 0 && n-1 > t.max {
		t.max = n - 1
	}
}

// Read returns the symbol under the head.
func (t *Tape) Read() domain.Symbol {
	return t.at(t.head)
}

// Write replaces the symbol under the head.
func (t *Tape) Write(sym domain.Symbol) {
	t.set(t.head, sym)
}

// Move shifts the head by the offset of the direction.
func (t *Tape) Move(dir domain.Direction) {
	t.head += dir.Offset()
	if t.head < t.min {
		t.min = t.head
	}
	if t.head > t.max {
		t.max = t.head
	}
}

// Head returns the current head position.
func (t *Tape) Head() int {
	return t.head
}

// Bounds returns the leftmost and rightmost visited positions.
func (t *Tape) Bounds() (int, int) {
	return t.min, t.max
}

// Restore puts back a cell and the head/visited range as they were before a step.
func (t *Tape) Restore(head, pos int, sym domain.Symbol, min, max int) {
	t.set(pos, sym)
	t.head = head
	t.min = min
	t.max = max
}

// Snapshot renders every visited cell. It has no side effects.
func (t *Tape) Snapshot() (offset int, cells []domain.Symbol) {
	cells = make([]domain.Symbol, 0, t.max-t.min+1)
	for p := t.min; p <= t.max; p++ {
		cells = append(cells, t.at(p))
	}
	return t.min, cells
}

func (t *Tape) at(pos int) domain.Symbol {
	if s, ok := t.cells[pos]; ok {
		return s
	}
	return t.blank
}

// set keeps memory proportional to the non-blank cells.
func (t *Tape) set(pos int, sym domain.Symbol) {
	if sym == t.blank {
		delete(t.cells, pos)
		return
	}
	t.cells[pos] = sym
}
