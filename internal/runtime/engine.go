package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/pkg/classifier"
	"github.com/aretw0/pizzabot/pkg/domain"
)

// Engine is the dialog state machine.
// It holds no per-conversation data; every call works on the conversation it is given.
type Engine struct {
	classifier *classifier.Classifier
	prompts    *Prompts
	table      []transition
	logger     *slog.Logger
	now        func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClassifier replaces the default vocabulary.
func WithClassifier(c *classifier.Classifier) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithLogger sets the logger used for state change traces.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine over the ordering dialog table.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		classifier: classifier.Default(),
		table:      dialogTable,
		logger:     logging.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.prompts = NewPrompts(e.classifier)
	return e
}

// Prompts returns the reply renderer bound to the engine's vocabulary.
func (e *Engine) Prompts() *Prompts {
	return e.prompts
}

// Advance feeds one inbound text into the conversation.
// Exactly one transition fires. The input conversation is never mutated;
// the returned Outcome carries the next snapshot and the replies to deliver.
func (e *Engine) Advance(ctx context.Context, conv *domain.Conversation, text string) (*domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("advance: nil conversation")
	}

	for i := range e.table {
		tr := &e.table[i]
		if !tr.matches(e.classifier, conv.State, text) {
			continue
		}

		t := &turn{conv: conv.Clone(), text: text}
		for _, act := range tr.actions {
			act(e, t)
		}

		from := conv.State
		if tr.target == domain.StateStart && from != domain.StateStart {
			t.conv.Cycles++
		}
		t.conv.State = tr.target
		t.conv.UpdatedAt = e.now()

		e.logger.Debug("Change state",
			"conversation_id", conv.ID,
			"rule", tr.name,
			"from", from,
			"to", tr.target,
		)

		return &domain.Outcome{
			Conversation: t.conv,
			Replies:      t.replies,
			Step:         domain.Step{Rule: tr.name, From: from, To: tr.target},
		}, nil
	}

	return nil, fmt.Errorf("%w: state %q", domain.ErrNoTransition, conv.State)
}

// Transitions returns the dialog table in evaluation order.
func (e *Engine) Transitions() []domain.TransitionInfo {
	out := make([]domain.TransitionInfo, 0, len(e.table))
	for i, tr := range e.table {
		info := domain.TransitionInfo{
			Index:  i + 1,
			Name:   tr.name,
			Source: tr.source,
			Target: tr.target,
		}
		if tr.guard != nil {
			info.Guard = tr.guard.name
		}
		out = append(out, info)
	}
	return out
}
