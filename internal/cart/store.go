package cart

import (
	"context"
	"sync"
)

// Store keeps carts between requests, keyed by session id.
type Store interface {
	// Load returns an empty cart when nothing is stored for the session.
	Load(ctx context.Context, sessionID string) (*Cart, error)
	// Save persists the cart. Saving an empty cart removes it.
	Save(ctx context.Context, sessionID string, c *Cart) error
}

type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]map[string]int{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New()
	for id, q := range s.carts[sessionID] {
		c.Items[id] = q
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		delete(s.carts, sessionID)
		return nil
	}
	items := make(map[string]int, len(c.Items))
	for id, q := range c.Items {
		items[id] = q
	}
	s.carts[sessionID] = items
	return nil
}
