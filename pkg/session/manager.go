package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pizzabot/internal/logging"
	"github.com/aretw0/pizzabot/pkg/domain"
	"github.com/aretw0/pizzabot/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.ConversationStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiration of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.ConversationStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves an existing conversation from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv *domain.Conversation
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, id)
		return err
	})
	return conv, err
}

// LoadOrCreate loads a conversation, creating it at the start state if it does not exist.
// Creation is atomic per key: concurrent first messages produce a single conversation.
func (m *Manager) LoadOrCreate(ctx context.Context, id string) (*domain.Conversation, bool, error) {
	var (
		conv    *domain.Conversation
		created bool
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		conv, created, err = m.loadOrCreate(ctx, id)
		return err
	})
	return conv, created, err
}

// loadOrCreate must be called with the lock for id held.
func (m *Manager) loadOrCreate(ctx context.Context, id string) (*domain.Conversation, bool, error) {
	conv, err := m.store.Load(ctx, id)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, domain.ErrConversationNotFound) {
		return nil, false, fmt.Errorf("failed to check conversation existence: %w", err)
	}

	conv = domain.NewConversation(id)

	// Persist immediately to reserve the ID
	if err := m.store.Save(ctx, conv); err != nil {
		return nil, false, fmt.Errorf("failed to initialize conversation: %w", err)
	}
	return conv, true, nil
}

// Save persists the conversation.
func (m *Manager) Save(ctx context.Context, conv *domain.Conversation) error {
	return m.WithLock(ctx, conv.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, conv)
	})
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying conversation store.
func (m *Manager) Store() ports.ConversationStore {
	return m.store
}

// WithLock executes a function while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
