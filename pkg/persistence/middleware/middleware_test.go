package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/persistence/middleware"
	"github.com/aretw0/pizzabot/pkg/ports"
)

// blockingStore waits for the context on every call.
type blockingStore struct{}

func (blockingStore) Save(ctx context.Context, conv *domain.Conversation) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) Delete(ctx context.Context, id string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingStore) List(ctx context.Context) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestChain_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewTimeoutMiddleware(time.Second),
		middleware.NewLoggingMiddleware(logging.NewNop()),
		middleware.NewMetricsMiddleware(prometheus.NewRegistry()),
		nil,
	)
	ports.RunConversationStoreContract(t, store)
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.ConversationStore) ports.ConversationStore {
			calls = append(calls, name)
			return next
		}
	}

	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, calls, "inner wraps the store first")
}

func TestTimeoutMiddleware(t *testing.T) {
	store := middleware.NewTimeoutMiddleware(10 * time.Millisecond)(blockingStore{})
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, domain.NewConversation("a")), context.DeadlineExceeded)
	_, err := store.Load(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, store.Delete(ctx, "a"), context.DeadlineExceeded)
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutMiddleware_Disabled(t *testing.T) {
	inner := memory.NewStore()
	assert.Same(t, inner, middleware.NewTimeoutMiddleware(0)(inner))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, "text")
	store := middleware.NewLoggingMiddleware(logger)(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewConversation("42")))
	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrConversationNotFound)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "op=save")
	assert.Contains(t, lines[0], "conversation_id=42")
	assert.Contains(t, lines[1], "level=DEBUG", "not found is not a failure")

	buf.Reset()
	failing := middleware.NewLoggingMiddleware(logger)(middleware.NewTimeoutMiddleware(time.Millisecond)(blockingStore{}))
	_, _ = failing.List(ctx)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "err=")
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := middleware.NewMetricsMiddleware(reg)(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewConversation("1")))
	_, err := store.Load(ctx, "1")
	require.NoError(t, err)
	_, err = store.Load(ctx, "2")
	require.Error(t, err)
	_, err = store.List(ctx)
	require.NoError(t, err)

	// One series per (operation, status) pair seen.
	assert.Equal(t, 4, testutil.CollectAndCount(reg, "pizzabot_store_operation_duration_seconds"))
}
