package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// Overlay contains run data to visualize on the state diagram.
type Overlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
}

// OverlayFromTrace marks every state of the trace as visited and the state of
// its last snapshot as current.
func OverlayFromTrace(trace domain.Trace) *Overlay {
	last, ok := trace.Last()
	if !ok {
		return nil
	}
	return &Overlay{
		VisitedStates: trace.States(),
		CurrentState:  last.State,
	}
}

// GenerateMermaid produces a Mermaid flowchart for the machine's state diagram.
// Shapes:
// - Initial: ((Circle))
// - Final: (((Double circle)))
// - Default: [Rectangle]
// Rules sharing the same source and target are folded into one edge whose
// label lists "read/write,move" per rule.
// Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(m *machine.Machine, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, state := range m.States() {
		safeID := sanitizeMermaidID(string(state))

		opener, closer := "[", "]"
		switch {
		case m.IsFinal(state):
			opener, closer = "(((", ")))"
		case state == m.Initial():
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(string(state)), closer))
	}

	// Entry marker so the initial state stays recognizable when it is also final
	sb.WriteString(fmt.Sprintf("    __start__[ ] --> %s\n", sanitizeMermaidID(string(m.Initial()))))

	type edge struct{ from, to domain.State }
	var order []edge
	labels := make(map[edge][]string)
	for _, t := range m.Table().Transitions() {
		e := edge{t.From, t.Next}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		labels[e] = append(labels[e], fmt.Sprintf("%s/%s,%s", t.Read, t.Write, t.Move))
	}
	for _, e := range order {
		label := escapeLabel(strings.Join(labels[e], "<br/>"))
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", sanitizeMermaidID(string(e.from)), label, sanitizeMermaidID(string(e.to))))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, state := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(string(state))
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentState))))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
