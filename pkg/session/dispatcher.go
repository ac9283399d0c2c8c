package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/google/uuid"
)

// Result describes how one inbound message was processed.
type Result struct {
	EventID      string               `json:"event_id"`
	Conversation *domain.Conversation `json:"conversation"`
	Replies      []domain.Reply       `json:"replies"`
	Step         domain.Step          `json:"step"`
	Created      bool                 `json:"created"`

	// SendErrors holds delivery failures. They do not undo the transition.
	SendErrors []error `json:"-"`
}

// Dispatcher feeds inbound messages into per-conversation state machines.
type Dispatcher struct {
	manager *Manager
	machine ports.Machine
	sender  ports.Sender
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   func() string
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSender sets the outbound delivery capability.
// Without a sender, replies are only returned in the Result.
func WithSender(s ports.Sender) DispatcherOption {
	return func(d *Dispatcher) {
		d.sender = s
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) DispatcherOption {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithDispatchLogger sets the logger used for per-message traces.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher over a registry and a dialog machine.
func NewDispatcher(manager *Manager, machine ports.Machine, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		manager: manager,
		machine: machine,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch processes one inbound text for a conversation.
// The transition and the persisted snapshot are committed before any reply is
// sent; send failures are reported in Result.SendErrors, not as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, conversationID, text string) (*Result, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, domain.ErrEmptyConversationID
	}

	res := &Result{EventID: d.newID()}
	logger := d.logger.With("conversation_id", conversationID, "event_id", res.EventID)

	err := d.manager.WithLock(ctx, conversationID, func(ctx context.Context) error {
		conv, created, err := d.manager.loadOrCreate(ctx, conversationID)
		if err != nil {
			return err
		}
		res.Created = created
		if created {
			logger.Info("Conversation created")
			if d.hooks.OnConversationCreated != nil {
				base := d.event(domain.EventConversationCreated, conversationID, res.EventID)
				d.hooks.OnConversationCreated(ctx, &base)
			}
		}

		out, err := d.machine.Advance(ctx, conv, text)
		if err != nil {
			return fmt.Errorf("failed to advance conversation: %w", err)
		}

		if err := d.manager.store.Save(ctx, out.Conversation); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}

		res.Conversation = out.Conversation
		res.Replies = out.Replies
		res.Step = out.Step

		logger.Info("Change state",
			"rule", out.Step.Rule,
			"from", out.Step.From,
			"to", out.Step.To,
		)
		if d.hooks.OnTransition != nil {
			d.hooks.OnTransition(ctx, &domain.TransitionEvent{
				EventBase: d.event(domain.EventTransition, conversationID, res.EventID),
				Step:      out.Step,
			})
		}

		// Replies are delivered under the lock so one conversation never sees them reordered.
		d.deliver(ctx, logger, res)
		return nil
	})
	if err != nil {
		logger.Error("Dispatch failed", "err", err)
		return nil, err
	}
	return res, nil
}

func (d *Dispatcher) deliver(ctx context.Context, logger *slog.Logger, res *Result) {
	if d.sender == nil {
		return
	}
	for _, r := range res.Replies {
		evt := &domain.ReplyEvent{Text: r.Text}
		if err := d.sender.Send(ctx, r.Recipient, r.Text); err != nil {
			res.SendErrors = append(res.SendErrors, err)
			logger.Warn("Failed to send reply", "recipient", r.Recipient, "err", err)
			if d.hooks.OnReplyFailed != nil {
				evt.EventBase = d.event(domain.EventReplyFailed, r.Recipient, res.EventID)
				evt.Err = err
				d.hooks.OnReplyFailed(ctx, evt)
			}
			continue
		}
		if d.hooks.OnReplySent != nil {
			evt.EventBase = d.event(domain.EventReplySent, r.Recipient, res.EventID)
			d.hooks.OnReplySent(ctx, evt)
		}
	}
}

// Transitions exposes the machine's table.
func (d *Dispatcher) Transitions() []domain.TransitionInfo {
	return d.machine.Transitions()
}

// Manager returns the registry used by the dispatcher.
func (d *Dispatcher) Manager() *Manager {
	return d.manager
}

func (d *Dispatcher) event(t domain.EventType, conversationID, eventID string) domain.EventBase {
	return domain.EventBase{
		Timestamp:      time.Now().UTC(),
		Type:           t,
		ConversationID: conversationID,
		EventID:        eventID,
	}
}
