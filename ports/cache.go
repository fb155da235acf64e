package ports

import (
	"context"

	"switchlens/domain/stats"
)

// CacheStore persists the precomputed smoothed-rate table. The snapshot
// is rebuilt from scratch on every data refresh, so the only write is a
// full replace. A missing or unreadable store must degrade to "always
// miss" at the call site, never to a hard failure of the pipeline.
type CacheStore interface {
	// Replace atomically swaps the stored table for the given entries
	Replace(ctx context.Context, entries []stats.CacheEntry) error

	// LoadAll returns every stored entry
	LoadAll(ctx context.Context) ([]stats.CacheEntry, error)
}
