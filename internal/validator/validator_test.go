package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pizzabot/internal/runtime"
	"github.com/aretw0/pizzabot/pkg/domain"
)

func TestValidateTransitions_DialogTable(t *testing.T) {
	err := ValidateTransitions(runtime.NewEngine().Transitions(), domain.StateStart)
	assert.NoError(t, err)
}

func TestValidateTransitions(t *testing.T) {
	valid := []domain.TransitionInfo{
		{Name: "cancel", Source: domain.StateAny, Target: domain.StateStart},
		{Name: "begin", Source: domain.StateStart, Target: domain.StateAskSize},
		{Name: "size", Source: domain.StateAskSize, Target: domain.StateAskPayment},
		{Name: "payment", Source: domain.StateAskPayment, Target: domain.StateAskConfirm},
		{Name: "confirm", Source: domain.StateAskConfirm, Target: domain.StateStart},
	}
	require.NoError(t, ValidateTransitions(valid, domain.StateStart))

	t.Run("Broken link", func(t *testing.T) {
		table := append(append([]domain.TransitionInfo{}, valid...),
			domain.TransitionInfo{Name: "oven", Source: domain.StateAskConfirm, Target: "oven"})
		err := ValidateTransitions(table, domain.StateStart)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown target 'oven'")
	})

	t.Run("Unknown source", func(t *testing.T) {
		table := append(append([]domain.TransitionInfo{}, valid...),
			domain.TransitionInfo{Name: "ghost", Source: "ghost", Target: domain.StateStart})
		err := ValidateTransitions(table, domain.StateStart)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown source 'ghost'")
	})

	t.Run("Duplicate name", func(t *testing.T) {
		table := append(append([]domain.TransitionInfo{}, valid...),
			domain.TransitionInfo{Name: "begin", Source: domain.StateStart, Target: domain.StateAskSize})
		err := ValidateTransitions(table, domain.StateStart)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Duplicate rule name: 'begin'")
	})

	t.Run("Unreachable and dead end", func(t *testing.T) {
		// ask_payment is never entered and ask_confirm has no way out of its own.
		table := []domain.TransitionInfo{
			{Name: "cancel", Source: domain.StateAny, Target: domain.StateStart},
			{Name: "begin", Source: domain.StateStart, Target: domain.StateAskSize},
			{Name: "size", Source: domain.StateAskSize, Target: domain.StateAskSize},
		}
		err := ValidateTransitions(table, domain.StateStart)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unreachable state: 'ask_payment'")
		assert.Contains(t, err.Error(), "State 'ask_confirm' has no rule of its own")
	})
}
