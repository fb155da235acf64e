package app

import (
	"context"

	"switchlens/domain/survey"
	"switchlens/internal"
	"switchlens/internal/bayescache"
	"switchlens/internal/config"
	"switchlens/ports"
)

// RefreshService owns the cache rebuild cycle: precompute a full
// snapshot, publish it atomically, persist it best-effort. Staleness is
// all-or-nothing; there is no incremental update path.
type RefreshService struct {
	cfg    config.Config
	cache  *bayescache.Cache
	store  ports.CacheStore
	logger *internal.Logger
}

// NewRefreshService creates a refresh service. store may be nil when no
// persistence backend is configured; the cache then lives only in memory.
func NewRefreshService(cfg config.Config, cache *bayescache.Cache, store ports.CacheStore, logger *internal.Logger) *RefreshService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RefreshService{cfg: cfg, cache: cache, store: store, logger: logger}
}

// Rebuild precomputes the smoothed-rate snapshot from the dataset,
// publishes it, then persists it. A persistence failure is logged and
// swallowed: the in-memory snapshot is already serving, and a store that
// keeps failing simply means the next process start begins with an
// always-miss cache.
func (s *RefreshService) Rebuild(ctx context.Context, ds *survey.Dataset) error {
	snap, err := bayescache.Precompute(ctx, ds, s.cfg)
	if err != nil {
		return err
	}
	s.cache.Publish(snap)
	s.logger.Info("bayesian cache rebuilt: %d entries", len(snap))

	if s.store == nil {
		return nil
	}
	if err := s.store.Replace(ctx, snap.Entries()); err != nil {
		s.logger.Warn("bayesian cache persist failed, continuing in-memory: %v", err)
	}
	return nil
}

// Restore loads the persisted snapshot into the cache. Any failure
// publishes nothing, leaving an always-miss cache; downstream queries
// fall back to live computation.
func (s *RefreshService) Restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("bayesian cache load failed, starting with empty cache: %v", err)
		return
	}
	s.cache.Publish(bayescache.FromEntries(entries))
	s.logger.Info("bayesian cache restored: %d entries", len(entries))
}
