// Package validator checks a dialog transition table for structural defects.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// ValidateTransitions checks for unknown states, duplicate rule names, states
// unreachable from start and states with no outgoing rule.
func ValidateTransitions(transitions []domain.TransitionInfo, start domain.StateID) error {
	var errors []string

	names := make(map[string]bool)
	outgoing := make(map[domain.StateID][]domain.StateID)
	var wildcard []domain.StateID

	for _, t := range transitions {
		if names[t.Name] {
			errors = append(errors, fmt.Sprintf("Duplicate rule name: '%s'", t.Name))
		}
		names[t.Name] = true

		if t.Source != domain.StateAny && !t.Source.Valid() {
			errors = append(errors, fmt.Sprintf("Rule '%s' has unknown source '%s'", t.Name, t.Source))
		}
		if !t.Target.Valid() {
			errors = append(errors, fmt.Sprintf("Rule '%s' has unknown target '%s'", t.Name, t.Target))
			continue
		}

		if t.Source == domain.StateAny {
			wildcard = append(wildcard, t.Target)
		} else {
			outgoing[t.Source] = append(outgoing[t.Source], t.Target)
		}
	}

	// Crawl from start; wildcard rules leave every state.
	visited := make(map[domain.StateID]bool)
	queue := []domain.StateID{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range append(outgoing[current], wildcard...) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, s := range domain.States {
		if !visited[s] {
			errors = append(errors, fmt.Sprintf("Unreachable state: '%s'", s))
		}
		if len(outgoing[s]) == 0 {
			errors = append(errors, fmt.Sprintf("State '%s' has no rule of its own", s))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
