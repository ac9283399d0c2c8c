package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
)

type metricsMiddleware struct {
	next     ports.ConversationStore
	duration *prometheus.HistogramVec
}

// NewMetricsMiddleware records the latency of every store call on reg as
// pizzabot_store_operation_duration_seconds{operation,status}.
// Status is "ok", "not_found" or "error".
func NewMetricsMiddleware(reg prometheus.Registerer) Middleware {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pizzabot_store_operation_duration_seconds",
			Help:    "Latency of conversation store calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
	if reg != nil {
		reg.MustRegister(duration)
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &metricsMiddleware{next: next, duration: duration}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	m.duration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) Save(ctx context.Context, conv *domain.Conversation) error {
	start := time.Now()
	err := m.next.Save(ctx, conv)
	m.observe("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	start := time.Now()
	conv, err := m.next.Load(ctx, conversationID)
	m.observe("load", start, err)
	return conv, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, conversationID string) error {
	start := time.Now()
	err := m.next.Delete(ctx, conversationID)
	m.observe("delete", start, err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe("list", start, err)
	return ids, err
}
