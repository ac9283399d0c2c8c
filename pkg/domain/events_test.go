package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestChainHooks(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) { calls = append(calls, "first:"+e.Rule) },
	}
	second := domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) { calls = append(calls, "second:"+e.Rule) },
		OnReplySent:  func(ctx context.Context, e *domain.ReplyEvent) { calls = append(calls, "sent:"+e.Text) },
	}

	h := domain.ChainHooks(first, domain.LifecycleHooks{}, second)
	h.OnTransition(context.Background(), &domain.TransitionEvent{Step: domain.Step{Rule: "begin"}})
	h.OnReplySent(context.Background(), &domain.ReplyEvent{Text: "ok"})

	assert.Equal(t, []string{"first:begin", "second:begin", "sent:ok"}, calls)
	assert.Nil(t, h.OnConversationCreated)
	assert.Nil(t, h.OnReplyFailed)
}
