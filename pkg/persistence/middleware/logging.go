package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.ConversationStore
	logger *slog.Logger
}

// NewLoggingMiddleware traces store calls at debug level and failures at warn.
// A missing conversation is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(ctx context.Context, op, conversationID string, start time.Time, err error) {
	attrs := []any{"op", op, "duration", time.Since(start)}
	if conversationID != "" {
		attrs = append(attrs, "conversation_id", conversationID)
	}
	if err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
		m.logger.WarnContext(ctx, "Store call failed", append(attrs, "err", err)...)
		return
	}
	m.logger.DebugContext(ctx, "Store call", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	start := time.Now()
	err := m.next.Save(ctx, conv)
	m.log(ctx, "save", conv.ID, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	start := time.Now()
	conv, err := m.next.Load(ctx, conversationID)
	m.log(ctx, "load", conversationID, start, err)
	return conv, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, conversationID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, conversationID)
	m.log(ctx, "delete", conversationID, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return ids, err
}
