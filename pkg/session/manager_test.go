package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/pizzabot/pkg/adapters/memory"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
	"github.com/aretw0/pizzabot/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	saves atomic.Int32
}

func NewSlowStore() *SlowStore {
	return &SlowStore{Store: memory.NewStore()}
}

func (s *SlowStore) Save(ctx context.Context, conv *domain.Conversation) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.saves.Add(1)
	return s.Store.Save(ctx, conv)
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

func TestManager_LoadOrCreate_IsAtomic(t *testing.T) {
	store := NewSlowStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, isNew, err := manager.LoadOrCreate(ctx, "chat-1")
			assert.NoError(t, err)
			assert.Equal(t, domain.StateStart, conv.State)
			if isNew {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load(), "exactly one caller should create the conversation")
	assert.Equal(t, int32(1), store.saves.Load())
}

func TestManager_WithLock_SerializesSameKey(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		overlap atomic.Bool
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = manager.WithLock(ctx, "same", func(ctx context.Context) error {
				if active.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "critical sections for one key must not overlap")
}

func TestManager_WithLock_DifferentKeysDoNotBlock(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = manager.WithLock(ctx, "a", func(ctx context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	go func() {
		_ = manager.WithLock(ctx, "b", func(ctx context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on key b waited for key a")
	}
	close(release)
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.unlocked = append(l.unlocked, key)
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	t.Run("Acquires and releases", func(t *testing.T) {
		locker := &recordingLocker{}
		manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

		_, _, err := manager.LoadOrCreate(context.Background(), "chat-7")
		require.NoError(t, err)

		assert.Equal(t, []string{"chat-7"}, locker.locked)
		assert.Equal(t, []string{"chat-7"}, locker.unlocked)
	})

	t.Run("Lock failure aborts", func(t *testing.T) {
		locker := &recordingLocker{err: errors.New("redis down")}
		store := memory.NewStore()
		manager := session.NewManager(store, session.WithLocker(locker))

		_, _, err := manager.LoadOrCreate(context.Background(), "chat-7")
		assert.ErrorContains(t, err, "redis down")
		assert.Equal(t, 0, store.Len())
	})
}

func TestManager_LoadMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestManager_List(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		_, _, err := manager.LoadOrCreate(ctx, id)
		require.NoError(t, err)
	}

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	ids, err = manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}
