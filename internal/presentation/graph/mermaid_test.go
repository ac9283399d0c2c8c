package graph_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pizzabot/internal/presentation/graph"
	"github.com/aretw0/pizzabot/internal/runtime"
	"github.com/aretw0/pizzabot/pkg/domain"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGenerateMermaid_DialogTable(t *testing.T) {
	out := graph.GenerateMermaid(runtime.NewEngine().Transitions(), nil)
	newGoldie(t).Assert(t, "dialog", []byte(out))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	out := graph.GenerateMermaid(runtime.NewEngine().Transitions(), &graph.Overlay{Current: domain.StateAskPayment})
	newGoldie(t).Assert(t, "dialog_overlay", []byte(out))
}

func TestGenerateMermaid_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		transitions []domain.TransitionInfo
		contains    []string
		notContains []string
	}{
		{
			name:        "Known states always drawn",
			transitions: nil,
			contains:    []string{`start(("start"))`, `ask_confirm[/"ask_confirm"/]`},
		},
		{
			name: "Extra state and sanitized id",
			transitions: []domain.TransitionInfo{
				{Index: 1, Name: "escalate", Source: domain.StateAskSize, Target: "hand-off"},
			},
			contains: []string{`hand_off[/"hand-off"/]`, `ask_size -- "1. escalate" --> hand_off`},
		},
		{
			name: "Quotes in guard",
			transitions: []domain.TransitionInfo{
				{Index: 1, Name: "r", Source: domain.StateStart, Guard: `say "hi"`, Target: domain.StateStart},
			},
			contains:    []string{`"1. r [say 'hi']"`},
			notContains: []string{`"hi"`},
		},
		{
			name:        "No overlay section without overlay",
			transitions: nil,
			notContains: []string{"Overlay Styles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.transitions, nil)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}
