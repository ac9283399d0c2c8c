package pizzabot

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/internal/runtime"
	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/classifier"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/aretw0/pizzabot/pkg/session"
)

// Bot is the high-level entry point: a dialog machine, a conversation
// registry and an optional outbound transport wired together.
type Bot struct {
	engine     *runtime.Engine
	manager    *session.Manager
	dispatcher *session.Dispatcher
	logger     *slog.Logger
}

type options struct {
	store      ports.ConversationStore
	sender     ports.Sender
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	hooks      []domain.LifecycleHooks
	classifier *classifier.Classifier
	logger     *slog.Logger
	clock      func() time.Time
}

// Option defines a functional option for configuring the Bot.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore persists conversations in store instead of process memory.
func WithStore(store ports.ConversationStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithSender delivers replies through s.
func WithSender(s ports.Sender) Option {
	return func(o *options) {
		o.sender = s
	}
}

// WithLocker serializes each conversation across processes.
// A zero ttl keeps the session default.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}

// WithHooks registers observability hooks. It may be given several times.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks)
	}
}

// WithClassifier replaces the default vocabulary.
func WithClassifier(c *classifier.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithClock overrides the time source used for conversation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New wires a Bot. Without options it keeps conversations in memory and only
// returns replies to the caller.
func New(opts ...Option) *Bot {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}
	if o.classifier == nil {
		o.classifier = classifier.Default()
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithClassifier(o.classifier),
		runtime.WithLogger(o.logger),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, runtime.WithClock(o.clock))
	}
	engine := runtime.NewEngine(engineOpts...)

	managerOpts := []session.Option{session.WithLogger(o.logger)}
	if o.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(o.locker))
		if o.lockTTL > 0 {
			managerOpts = append(managerOpts, session.WithLockTTL(o.lockTTL))
		}
	}
	manager := session.NewManager(o.store, managerOpts...)

	dispatcherOpts := []session.DispatcherOption{
		session.WithDispatchLogger(o.logger),
		session.WithHooks(domain.ChainHooks(o.hooks...)),
	}
	if o.sender != nil {
		dispatcherOpts = append(dispatcherOpts, session.WithSender(o.sender))
	}

	return &Bot{
		engine:     engine,
		manager:    manager,
		dispatcher: session.NewDispatcher(manager, engine, dispatcherOpts...),
		logger:     o.logger,
	}
}

// Dispatch processes one inbound text for a conversation and delivers the
// replies through the configured sender.
func (b *Bot) Dispatch(ctx context.Context, conversationID, text string) (*session.Result, error) {
	return b.dispatcher.Dispatch(ctx, conversationID, text)
}

// Load returns the stored conversation, or domain.ErrConversationNotFound.
func (b *Bot) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	return b.manager.Load(ctx, conversationID)
}

// List returns the ids of all stored conversations.
func (b *Bot) List(ctx context.Context) ([]string, error) {
	return b.manager.List(ctx)
}

// Forget drops a conversation; its next message starts a fresh dialog.
func (b *Bot) Forget(ctx context.Context, conversationID string) error {
	return b.manager.Delete(ctx, conversationID)
}

// Transitions returns the dialog's transition table.
func (b *Bot) Transitions() []domain.TransitionInfo {
	return b.engine.Transitions()
}

// Greeting is the welcome text transports send for a start command.
func (b *Bot) Greeting() string {
	return b.engine.Prompts().Greeting()
}

// TextOnly is the answer to messages that carry no text.
func (b *Bot) TextOnly() string {
	return b.engine.Prompts().TextOnly()
}

// Dispatcher exposes the underlying session dispatcher.
func (b *Bot) Dispatcher() *session.Dispatcher {
	return b.dispatcher
}
