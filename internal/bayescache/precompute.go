package bayescache

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
	"switchlens/internal/bayes"
	"switchlens/internal/config"
	"switchlens/internal/filter"
	"switchlens/internal/rates"
)

// Precompute builds a full snapshot of smoothed retention rates over the
// dataset: for each configured product and time window it computes the
// market retention rate (no insurer filter), then smooths every insurer's
// retained/total counts against that market prior, excluding new-to-market
// respondents from both sides.
//
// Per-insurer computation fans out across goroutines; each reads the
// shared dataset read-only and writes a disjoint key, so the only
// coordination is the final merge.
func Precompute(ctx context.Context, ds *survey.Dataset, cfg config.Config) (Snapshot, error) {
	snap := make(Snapshot)
	var mu sync.Mutex

	for _, product := range cfg.Products {
		for _, window := range cfg.TimeWindows {
			market := filter.Apply(ds, filter.Params{Product: product, TimeWindowMonths: window})
			marketRate := rates.RetentionRate(market)
			if marketRate == nil {
				// No respondents for this product/window; nothing to cache.
				continue
			}

			var g errgroup.Group
			for _, insurer := range market.Insurers() {
				insurer := insurer
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					entry, ok := computeEntry(ds, insurer, product, window, *marketRate, cfg.PriorStrength)
					if !ok {
						return nil
					}
					mu.Lock()
					snap[Key{Insurer: insurer, Product: product, TimeWindowMonths: window}] = entry
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
		}
	}
	return snap, nil
}

// computeEntry smooths one insurer's retention against the market prior.
// ok is false when the insurer has no respondents in the segment.
func computeEntry(ds *survey.Dataset, insurer string, product survey.Product, window int, marketRate, priorStrength float64) (stats.CacheEntry, bool) {
	segment := filter.Apply(ds, filter.Params{Insurer: insurer, Product: product, TimeWindowMonths: window})
	retained, total := rates.RetainedCount(segment)
	if total == 0 {
		return stats.CacheEntry{}, false
	}
	result := bayes.Smooth(retained, total, marketRate, priorStrength)
	return stats.CacheEntry{
		Insurer:          insurer,
		Product:          product,
		TimeWindowMonths: window,
		N:                total,
		RawRate:          *result.RawRate,
		PosteriorMean:    result.PosteriorMean,
		CILower:          result.CILower,
		CIUpper:          result.CIUpper,
		MarketRate:       marketRate,
		PriorStrength:    priorStrength,
	}, true
}

// Result converts a cache entry back into the smoothed-rate shape the
// presentation layer consumes, identical to a live bayes.Smooth call on
// the equivalent segment. ESS and weight are rederived from the stored
// sample size and the prior strength the entry was built with, so a
// reader whose configured strength has drifted from the build still
// gets the entry's own values.
func Result(e stats.CacheEntry) stats.BayesResult {
	raw := e.RawRate
	n := float64(e.N)
	return stats.BayesResult{
		PosteriorMean: e.PosteriorMean,
		CILower:       e.CILower,
		CIUpper:       e.CIUpper,
		ESS:           e.PriorStrength + n,
		Weight:        n / (n + e.PriorStrength),
		RawRate:       &raw,
	}
}
