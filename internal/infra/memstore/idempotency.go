package memstore

import (
	"context"
	"sync"
	"time"

	"cart-engine/internal/pkg/clock"
)

// IdempotencyStore reserves keys in process memory. Used when Redis is not
// configured.
type IdempotencyStore struct {
	mu    sync.Mutex
	clock clock.Clock
	keys  map[string]time.Time
}

func NewIdempotencyStore(clk clock.Clock) *IdempotencyStore {
	return &IdempotencyStore{
		clock: clk,
		keys:  make(map[string]time.Time),
	}
}

func (s *IdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if expiresAt, ok := s.keys[key]; ok && (expiresAt.IsZero() || now.Before(expiresAt)) {
		return false, nil
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	s.keys[key] = expiresAt
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
