package kvstore

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

// NewMemory builds an in-memory Store for development and tests.
func NewMemory() Store {
	return &memoryStore{items: make(map[string]memoryItem)}
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	s.items[key] = item
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[key]
	if !ok {
		return "", ErrNotFound
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		delete(s.items, key)
		return "", ErrNotFound
	}
	return item.value, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
