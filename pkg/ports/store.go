package ports

import (
	"context"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// ConversationStore defines the interface for persisting conversations.
// Implementations must be safe for concurrent use.
type ConversationStore interface {
	// Save persists the conversation under conv.ID, replacing any previous snapshot.
	Save(ctx context.Context, conv *domain.Conversation) error

	// Load retrieves the conversation for a given key.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// Delete removes the conversation for a given key.
	Delete(ctx context.Context, conversationID string) error

	// List returns the keys of the stored conversations.
	List(ctx context.Context) ([]string, error)
}
