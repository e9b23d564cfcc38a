package cache

import (
	"context"
	"time"
)

// MemoryStore adapts the in-process LRU to the Store port. The context is
// accepted for interface symmetry and never consulted.
type MemoryStore struct {
	lru *LRUCache[[]byte]
}

func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: NewLRUCache[[]byte](maxSize, ttl)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	return s.lru.Get(key)
}

func (s *MemoryStore) Set(ctx context.Context, key string, data []byte) {
	s.lru.Set(key, data)
}

func (s *MemoryStore) Delete(ctx context.Context, key string) {
	s.lru.Delete(key)
}

// CleanExpired lets the manager sweep this store.
func (s *MemoryStore) CleanExpired() int {
	return s.lru.CleanExpired()
}

// Size returns the current number of cached responses.
func (s *MemoryStore) Size() int {
	return s.lru.Size()
}
