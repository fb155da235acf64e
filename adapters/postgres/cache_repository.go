package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"switchlens/domain/core"
	"switchlens/domain/stats"
	"switchlens/ports"
)

// cacheRepository implements the CacheStore interface over the flat
// bayesian_cache table
type cacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a new bayesian cache repository
func NewCacheRepository(db *sqlx.DB) ports.CacheStore {
	return &cacheRepository{db: db}
}

// Replace swaps the stored table for the given entries in one
// transaction, so concurrent readers see either the old table or the new
// one, never a partial rebuild.
func (r *cacheRepository) Replace(ctx context.Context, entries []stats.CacheEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bayesian_cache`); err != nil {
		return fmt.Errorf("failed to clear bayesian cache: %w", err)
	}

	query := `INSERT INTO bayesian_cache (
		insurer, product, time_window_months, n, raw_rate,
		posterior_mean, ci_lower, ci_upper, market_rate, prior_strength
	) VALUES (
		:insurer, :product, :time_window_months, :n, :raw_rate,
		:posterior_mean, :ci_lower, :ci_upper, :market_rate, :prior_strength
	)`
	for _, entry := range entries {
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("failed to insert cache entry %s: %w", entry.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache replace: %w", err)
	}
	return nil
}

// LoadAll returns every stored cache entry
func (r *cacheRepository) LoadAll(ctx context.Context) ([]stats.CacheEntry, error) {
	query := `SELECT
		insurer, product, time_window_months, n, raw_rate,
		posterior_mean, ci_lower, ci_upper, market_rate, prior_strength
	FROM bayesian_cache`

	var entries []stats.CacheEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return entries, nil
}
