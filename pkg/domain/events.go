package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventConversationCreated EventType = "conversation_created"
	EventTransition          EventType = "transition"
	EventReplySent           EventType = "reply_sent"
	EventReplyFailed         EventType = "reply_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	EventID        string    `json:"event_id"` // Correlates every event of one inbound message
}

// TransitionEvent is emitted once per inbound text.
type TransitionEvent struct {
	EventBase
	Step
}

// ReplyEvent is emitted for every delivery attempt.
type ReplyEvent struct {
	EventBase
	Text string `json:"text"`
	Err  error  `json:"-"`
}

// LifecycleHooks defines callbacks for dialog observability.
type LifecycleHooks struct {
	OnConversationCreated func(context.Context, *EventBase)
	OnTransition          func(context.Context, *TransitionEvent)
	OnReplySent           func(context.Context, *ReplyEvent)
	OnReplyFailed         func(context.Context, *ReplyEvent)
}

// ChainHooks merges several hook sets; callbacks run in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		if h.OnConversationCreated != nil {
			prev, next := out.OnConversationCreated, h.OnConversationCreated
			out.OnConversationCreated = func(ctx context.Context, e *EventBase) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnTransition != nil {
			prev, next := out.OnTransition, h.OnTransition
			out.OnTransition = func(ctx context.Context, e *TransitionEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnReplySent != nil {
			prev, next := out.OnReplySent, h.OnReplySent
			out.OnReplySent = func(ctx context.Context, e *ReplyEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnReplyFailed != nil {
			prev, next := out.OnReplyFailed, h.OnReplyFailed
			out.OnReplyFailed = func(ctx context.Context, e *ReplyEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
