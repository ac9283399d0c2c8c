// Package graph renders the dialog transition table as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// Overlay contains conversation data to visualize on the graph.
type Overlay struct {
	Current domain.StateID
}

// GenerateMermaid produces a Mermaid flowchart from the transition table.
// The start state is drawn as a circle, waiting states as inputs.
// Rows with the wildcard source expand to one dotted edge per state.
// Edge labels carry the evaluation order, the rule name and its guard.
func GenerateMermaid(transitions []domain.TransitionInfo, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range states(transitions) {
		opener, closer := "[/", "/]"
		if s == domain.StateStart {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeID(s), opener, s, closer)
	}

	for _, t := range transitions {
		label := fmt.Sprintf("%d. %s", t.Index, t.Name)
		if t.Guard != "" {
			label += " [" + t.Guard + "]"
		}
		label = strings.ReplaceAll(label, "\"", "'")

		if t.Source == domain.StateAny {
			for _, s := range domain.States {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", sanitizeID(s), label, sanitizeID(t.Target))
			}
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", sanitizeID(t.Source), label, sanitizeID(t.Target))
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on the highlight in light and dark themes.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeID(overlay.Current))
	}

	return sb.String()
}

// states lists the known states in flow order followed by any extra state
// the table mentions.
func states(transitions []domain.TransitionInfo) []domain.StateID {
	seen := make(map[domain.StateID]bool)
	out := make([]domain.StateID, 0, len(domain.States))
	add := func(s domain.StateID) {
		if s == domain.StateAny || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range domain.States {
		add(s)
	}
	for _, t := range transitions {
		add(t.Source)
		add(t.Target)
	}
	return out
}

func sanitizeID(id domain.StateID) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(string(id))
}
