package domain

import "strings"

// Snapshot is the configuration of a machine at a given step.
// Cells hold the tape from the leftmost to the rightmost visited position;
// Offset is the tape position of Cells[0].
type Snapshot struct {
	Step   int      `json:"step"`
	State  State    `json:"state"`
	Head   int      `json:"head"`
	Offset int      `json:"offset"`
	Cells  []Symbol `json:"cells"`
}

// Under returns the symbol under the head.
func (s Snapshot) Under() Symbol {
	i := s.Head - s.Offset
	if i < 0 || i >= len(s.Cells) {
		return ""
	}
	return s.Cells[i]
}

// Window renders the cells with the head cell wrapped in brackets, e.g. "10[1]B".
func (s Snapshot) Window() string {
	var sb strings.Builder
	for i, c := range s.Cells {
		if s.Offset+i == s.Head {
			sb.WriteString("[" + string(c) + "]")
			continue
		}
		sb.WriteString(string(c))
	}
	return sb.String()
}

// Trim returns the cells without leading and trailing blanks.
func (s Snapshot) Trim(blank Symbol) []Symbol {
	start, end := 0, len(s.Cells)
	for start < end && s.Cells[start] == blank {
		start++
	}
	for end > start && s.Cells[end-1] == blank {
		end--
	}
	out := make([]Symbol, end-start)
	copy(out, s.Cells[start:end])
	return out
}

// Trace is the ordered record of configurations of a run.
// Trace[0] is the initial configuration.
type Trace []Snapshot

// Last returns the most recent snapshot.
func (t Trace) Last() (Snapshot, bool) {
	if len(t) == 0 {
		return Snapshot{}, false
	}
	return t[len(t)-1], true
}

// States returns the sequence of states visited.
func (t Trace) States() []State {
	states := make([]State, 0, len(t))
	for _, s := range t {
		states = append(states, s.State)
	}
	return states
}

// Clone returns a deep copy of the trace.
func (t Trace) Clone() Trace {
	out := make(Trace, len(t))
	for i, s := range t {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a copy of the snapshot that owns its cells.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Cells = make([]Symbol, len(s.Cells))
	copy(out.Cells, s.Cells)
	return out
}
