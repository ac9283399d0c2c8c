package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/pizzabot/internal/runtime"
	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/aretw0/pizzabot/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outbox records delivered replies per recipient.
type outbox struct {
	mu   sync.Mutex
	sent map[string][]string
	fail bool
}

func newOutbox() *outbox {
	return &outbox{sent: make(map[string][]string)}
}

func (o *outbox) Send(ctx context.Context, recipient, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("network unreachable")
	}
	o.sent[recipient] = append(o.sent[recipient], text)
	return nil
}

func (o *outbox) For(recipient string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.sent[recipient]...)
}

func newDispatcher(store ports.ConversationStore, opts ...session.DispatcherOption) *session.Dispatcher {
	return session.NewDispatcher(session.NewManager(store), runtime.NewEngine(), opts...)
}

func TestDispatcher_OrderFlow(t *testing.T) {
	store := memory.NewStore()
	out := newOutbox()
	d := newDispatcher(store, session.WithSender(out))
	ctx := context.Background()

	res, err := d.Dispatch(ctx, "100", "Привет")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.EventID)
	assert.Equal(t, domain.Step{Rule: "begin", From: domain.StateStart, To: domain.StateAskSize}, res.Step)

	for _, text := range []string{"большую", "наличкой", "да"} {
		res, err = d.Dispatch(ctx, "100", text)
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Empty(t, res.SendErrors)
	}

	assert.Equal(t, []string{
		"Какую вы хотите пиццу? Большую или маленькую?",
		"Как вы будете платить?",
		"Вы хотите большую пиццу, оплата - наличкой?",
		"Спасибо за заказ!",
	}, out.For("100"))

	conv, err := store.Load(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, domain.StateStart, conv.State)
	assert.Equal(t, 1, conv.Cycles)
	assert.Equal(t, domain.Order{Size: domain.SizeLarge, Payment: domain.PaymentCash}, conv.Order)
}

func TestDispatcher_ConversationsAreIsolated(t *testing.T) {
	solo := newOutbox()
	soloDispatcher := newDispatcher(memory.NewStore(), session.WithSender(solo))

	mixed := newOutbox()
	mixedDispatcher := newDispatcher(memory.NewStore(), session.WithSender(mixed))

	ctx := context.Background()
	a := []string{"привет", "маленькую", "картой", "нет"}
	b := []string{"hi", "что?", "большую", "отстань"}

	for _, text := range a {
		_, err := soloDispatcher.Dispatch(ctx, "a", text)
		require.NoError(t, err)
	}
	for _, text := range b {
		_, err := soloDispatcher.Dispatch(ctx, "b", text)
		require.NoError(t, err)
	}

	// Same inputs, interleaved.
	for i := range a {
		_, err := mixedDispatcher.Dispatch(ctx, "a", a[i])
		require.NoError(t, err)
		_, err = mixedDispatcher.Dispatch(ctx, "b", b[i])
		require.NoError(t, err)
	}

	assert.Equal(t, solo.For("a"), mixed.For("a"))
	assert.Equal(t, solo.For("b"), mixed.For("b"))
}

func TestDispatcher_SendFailureKeepsTransition(t *testing.T) {
	store := memory.NewStore()
	out := newOutbox()
	out.fail = true

	var failed int
	hooks := domain.LifecycleHooks{
		OnReplyFailed: func(ctx context.Context, e *domain.ReplyEvent) {
			failed++
			assert.Error(t, e.Err)
		},
	}
	d := newDispatcher(store, session.WithSender(out), session.WithHooks(hooks))

	res, err := d.Dispatch(context.Background(), "7", "start")
	require.NoError(t, err)
	require.Len(t, res.SendErrors, 1)
	assert.Equal(t, 1, failed)

	conv, err := store.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAskSize, conv.State)
}

func TestDispatcher_WithoutSender(t *testing.T) {
	d := newDispatcher(memory.NewStore())

	res, err := d.Dispatch(context.Background(), "1", "привет")
	require.NoError(t, err)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, domain.Reply{Recipient: "1", Text: "Какую вы хотите пиццу? Большую или маленькую?"}, res.Replies[0])
}

func TestDispatcher_EmptyConversationID(t *testing.T) {
	store := memory.NewStore()
	d := newDispatcher(store)

	for _, id := range []string{"", "   "} {
		_, err := d.Dispatch(context.Background(), id, "привет")
		assert.ErrorIs(t, err, domain.ErrEmptyConversationID)
	}
	assert.Equal(t, 0, store.Len())
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Save(ctx context.Context, conv *domain.Conversation) error {
	return errors.New("disk full")
}

func TestDispatcher_StoreFailure(t *testing.T) {
	out := newOutbox()
	d := newDispatcher(failingStore{memory.NewStore()}, session.WithSender(out))

	_, err := d.Dispatch(context.Background(), "9", "привет")
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, out.For("9"), "nothing is sent when the transition was not persisted")
}

func TestDispatcher_Hooks(t *testing.T) {
	var (
		created     []string
		transitions []domain.Step
		sent        []string
		eventIDs    = map[string]bool{}
	)
	hooks := domain.LifecycleHooks{
		OnConversationCreated: func(ctx context.Context, e *domain.EventBase) {
			created = append(created, e.ConversationID)
			eventIDs[e.EventID] = true
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			transitions = append(transitions, e.Step)
			eventIDs[e.EventID] = true
		},
		OnReplySent: func(ctx context.Context, e *domain.ReplyEvent) {
			sent = append(sent, e.Text)
			eventIDs[e.EventID] = true
		},
	}
	d := newDispatcher(memory.NewStore(), session.WithSender(newOutbox()), session.WithHooks(hooks))

	_, err := d.Dispatch(context.Background(), "5", "привет")
	require.NoError(t, err)

	assert.Equal(t, []string{"5"}, created)
	assert.Equal(t, []domain.Step{{Rule: "begin", From: domain.StateStart, To: domain.StateAskSize}}, transitions)
	assert.Len(t, sent, 1)
	assert.Len(t, eventIDs, 1, "every event of one message shares the event id")
}

func TestDispatcher_ConcurrentMessagesSameConversation(t *testing.T) {
	store := memory.NewStore()
	d := newDispatcher(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.Dispatch(ctx, "busy", fmt.Sprintf("msg %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// start -> ask_size on the first message, every later one is an unclear size.
	conv, err := store.Load(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAskSize, conv.State)
	assert.Equal(t, 0, conv.Cycles)
	assert.Equal(t, 1, store.Len())
}
