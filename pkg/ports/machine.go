package ports

import (
	"context"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// Machine defines the dialog state machine consumed by the dispatcher.
type Machine interface {
	// Advance fires exactly one transition for the inbound text.
	// It must not mutate conv.
	Advance(ctx context.Context, conv *domain.Conversation, text string) (*domain.Outcome, error)

	// Transitions returns the transition table for introspection.
	Transitions() []domain.TransitionInfo
}
