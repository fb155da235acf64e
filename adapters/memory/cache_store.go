// Package memory provides an in-memory CacheStore used in tests and in
// degraded operation when no database is configured. A fresh store is
// empty, which downstream code experiences as "always miss".
package memory

import (
	"context"
	"sync"

	"switchlens/domain/stats"
	"switchlens/ports"
)

type cacheStore struct {
	mu      sync.RWMutex
	entries []stats.CacheEntry
}

// NewCacheStore creates an empty in-memory cache store
func NewCacheStore() ports.CacheStore {
	return &cacheStore{}
}

// Replace swaps the stored entries
func (s *cacheStore) Replace(_ context.Context, entries []stats.CacheEntry) error {
	copied := make([]stats.CacheEntry, len(entries))
	copy(copied, entries)
	s.mu.Lock()
	s.entries = copied
	s.mu.Unlock()
	return nil
}

// LoadAll returns every stored entry
func (s *cacheStore) LoadAll(_ context.Context) ([]stats.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]stats.CacheEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
