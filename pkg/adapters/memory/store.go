package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/pizzabot/pkg/domain"
)

// Store implements ports.ConversationStore in memory.
// Safe for concurrent use. Conversations are never evicted.
type Store struct {
	data map[string]*domain.Conversation
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Conversation),
	}
}

// Save persists the conversation in memory.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrEmptyConversationID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to ensure isolation, similar to serialization
	s.data[conv.ID] = conv.Clone()
	return nil
}

// Load retrieves the conversation from memory.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[conversationID]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// Delete removes the conversation from memory.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, conversationID)
	return nil
}

// List returns all conversation keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for k := range s.data {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len reports how many conversations are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
