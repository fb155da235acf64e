// Package bayescache precomputes Bayesian-smoothed retention rates for
// every (insurer, product, time window) triple and serves O(1) lookups.
// Entries are valid only for the no-demographic-filter case; any active
// age/region/payment filter must bypass the cache and recompute live.
//
// The cache is an optimization, never the sole source of truth: a miss
// returns nil and callers fall back to on-demand smoothing.
package bayescache

import (
	"sync"

	"switchlens/domain/core"
	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

// Key identifies one precomputed entry
type Key struct {
	Insurer          string
	Product          survey.Product
	TimeWindowMonths int
}

// Snapshot is an immutable set of precomputed entries. A snapshot is
// built fully before being published, so readers never observe a
// partially-written cache.
type Snapshot map[Key]stats.CacheEntry

// Entries returns the snapshot contents as a flat slice for persistence
func (s Snapshot) Entries() []stats.CacheEntry {
	out := make([]stats.CacheEntry, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	return out
}

// FromEntries rebuilds a snapshot from persisted rows
func FromEntries(entries []stats.CacheEntry) Snapshot {
	snap := make(Snapshot, len(entries))
	for _, e := range entries {
		snap[Key{Insurer: e.Insurer, Product: e.Product, TimeWindowMonths: e.TimeWindowMonths}] = e
	}
	return snap
}

// Cache holds the currently published snapshot behind a swappable
// reference. The zero value is an always-miss cache.
type Cache struct {
	mu      sync.RWMutex
	snap    Snapshot
	version core.ID
}

// New creates an empty (always-miss) cache
func New() *Cache {
	return &Cache{}
}

// Publish atomically replaces the current snapshot and stamps a new
// version. Rebuilds are all-or-nothing; there is no incremental update
// path.
func (c *Cache) Publish(snap Snapshot) {
	version := core.NewID()
	c.mu.Lock()
	c.snap = snap
	c.version = version
	c.mu.Unlock()
}

// Version identifies the published snapshot; empty until the first
// publish. Useful for logging which rebuild served a query.
func (c *Cache) Version() core.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Lookup returns the precomputed entry for the triple, or nil on a miss
func (c *Cache) Lookup(insurer string, product survey.Product, timeWindowMonths int) *stats.CacheEntry {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil
	}
	entry, ok := c.snap[Key{Insurer: insurer, Product: product, TimeWindowMonths: timeWindowMonths}]
	if !ok {
		return nil
	}
	return &entry
}

// Len returns the number of entries in the published snapshot
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snap)
}
