package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

// TapeLine renders the cells of a snapshot with the head cell highlighted.
// With the Ascii profile the head cell is bracketed instead.
func TapeLine(s domain.Snapshot, p termenv.Profile) string {
	if p == termenv.Ascii {
		return s.Window()
	}

	var sb strings.Builder
	for i, c := range s.Cells {
		if s.Offset+i == s.Head {
			sb.WriteString(p.String(string(c)).Reverse().Bold().Foreground(p.Color("#fbbf24")).String())
			continue
		}
		sb.WriteString(string(c))
	}
	return sb.String()
}

// TraceLines renders one line per snapshot: step, state, head position and tape.
func TraceLines(trace domain.Trace, p termenv.Profile) []string {
	width := 0
	for _, s := range trace {
		width = max(width, len(s.State))
	}

	lines := make([]string, 0, len(trace))
	for _, s := range trace {
		lines = append(lines, fmt.Sprintf("%4d  %-*s  @%-3d %s", s.Step, width, s.State, s.Head, TapeLine(s, p)))
	}
	return lines
}
