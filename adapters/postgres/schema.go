package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema for the bayesian cache table. One row per
// (insurer, product, time_window_months) triple with no demographic
// filter applied.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS bayesian_cache (
	insurer            TEXT             NOT NULL,
	product            TEXT             NOT NULL,
	time_window_months INTEGER          NOT NULL,
	n                  INTEGER          NOT NULL,
	raw_rate           DOUBLE PRECISION NOT NULL,
	posterior_mean     DOUBLE PRECISION NOT NULL,
	ci_lower           DOUBLE PRECISION NOT NULL,
	ci_upper           DOUBLE PRECISION NOT NULL,
	market_rate        DOUBLE PRECISION NOT NULL,
	prior_strength     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (insurer, product, time_window_months)
)`

// EnsureSchema creates the cache table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		return fmt.Errorf("failed to ensure bayesian_cache schema: %w", err)
	}
	return nil
}
