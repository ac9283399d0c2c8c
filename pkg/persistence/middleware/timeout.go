package middleware

import (
	"context"
	"time"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
)

type timeoutMiddleware struct {
	next    ports.ConversationStore
	timeout time.Duration
}

// NewTimeoutMiddleware bounds every store call by d. A zero d disables it.
func NewTimeoutMiddleware(d time.Duration) Middleware {
	return func(next ports.ConversationStore) ports.ConversationStore {
		if d <= 0 {
			return next
		}
		return &timeoutMiddleware{next: next, timeout: d}
	}
}

func (m *timeoutMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Save(ctx, conv)
}

func (m *timeoutMiddleware) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Load(ctx, conversationID)
}

func (m *timeoutMiddleware) Delete(ctx context.Context, conversationID string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.Delete(ctx, conversationID)
}

func (m *timeoutMiddleware) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.next.List(ctx)
}
