package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// Metrics holds the dialog collectors.
type Metrics struct {
	Conversations prometheus.Counter
	Transitions   *prometheus.CounterVec
	Orders        *prometheus.CounterVec
	Replies       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg (if non-nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Conversations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pizzabot_conversations_created_total",
			Help: "Total number of conversations started",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzabot_transitions_total",
				Help: "Total number of fired transitions",
			},
			[]string{"rule", "from", "to"},
		),
		Orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzabot_order_cycles_total",
				Help: "Order cycles that returned to start, by outcome",
			},
			[]string{"outcome"},
		),
		Replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizzabot_replies_total",
				Help: "Reply delivery attempts, by status",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Conversations, m.Transitions, m.Orders, m.Replies)
	}
	return m
}

// cycleOutcomes maps the rules that close an order cycle to a metric label.
var cycleOutcomes = map[string]string{
	"order_confirmed": "confirmed",
	"order_declined":  "declined",
	"cancel":          "cancelled",
}

// Hooks logs every lifecycle event and records it on m (if non-nil).
func Hooks(logger *slog.Logger, m *Metrics) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnConversationCreated: func(ctx context.Context, e *domain.EventBase) {
			logger.Info("conversation_created",
				"conversation_id", e.ConversationID,
				"event_id", e.EventID,
			)
			if m != nil {
				m.Conversations.Inc()
			}
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.Info("Change state to "+string(e.To),
				"conversation_id", e.ConversationID,
				"event_id", e.EventID,
				"rule", e.Rule,
				"from", e.From,
			)
			if m == nil {
				return
			}
			m.Transitions.WithLabelValues(e.Rule, string(e.From), string(e.To)).Inc()
			if outcome, ok := cycleOutcomes[e.Rule]; ok && e.From != domain.StateStart {
				m.Orders.WithLabelValues(outcome).Inc()
			}
		},
		OnReplySent: func(ctx context.Context, e *domain.ReplyEvent) {
			logger.Debug("reply_sent",
				"conversation_id", e.ConversationID,
				"event_id", e.EventID,
			)
			if m != nil {
				m.Replies.WithLabelValues("sent").Inc()
			}
		},
		OnReplyFailed: func(ctx context.Context, e *domain.ReplyEvent) {
			logger.Warn("reply_failed",
				"conversation_id", e.ConversationID,
				"event_id", e.EventID,
				"err", e.Err,
			)
			if m != nil {
				m.Replies.WithLabelValues("failed").Inc()
			}
		},
	}
}
