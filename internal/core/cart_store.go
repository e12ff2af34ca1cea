package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CartStore is a thread-safe in-memory session store with TTL expiry. Every
// mutation runs under the store lock via WithCart, so a cart has exactly one
// mutator at a time; the core itself needs no further synchronization.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
	ttl   time.Duration
}

// NewCartStore creates a store whose carts expire ttl after their last
// mutation.
func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{carts: make(map[string]*Cart), ttl: ttl}
}

// Put registers a cart under its ID.
func (s *CartStore) Put(c *Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c
}

// Get returns a cart by ID, evicting it first if its TTL has lapsed.
func (s *CartStore) Get(id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *CartStore) getLocked(id string) (*Cart, error) {
	c, ok := s.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %s not found", id)
	}
	if time.Since(c.UpdatedAt) > s.ttl {
		delete(s.carts, id)
		return nil, fmt.Errorf("cart %s expired", id)
	}
	return c, nil
}

// WithCart runs fn against the cart while holding the store lock. This is
// the only mutation path adapters may use.
func (s *CartStore) WithCart(id string, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.getLocked(id)
	if err != nil {
		return err
	}
	return fn(c)
}

// Delete removes a cart, typically after successful order submission.
func (s *CartStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

// StartPurge starts a background goroutine that evicts expired carts every
// 5 minutes until ctx is cancelled.
func (s *CartStore) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for id, c := range s.carts {
					if time.Since(c.UpdatedAt) > s.ttl {
						delete(s.carts, id)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}
