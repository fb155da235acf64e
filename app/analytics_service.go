// Package app composes the analytics core into the query operations the
// presentation layer calls: suppression-gated rates and cache-or-live
// smoothed retention. The service holds no dataset state; every operation
// takes the dataset explicitly.
package app

import (
	"switchlens/domain/stats"
	"switchlens/domain/survey"
	"switchlens/internal/bayes"
	"switchlens/internal/bayescache"
	"switchlens/internal/config"
	"switchlens/internal/filter"
	"switchlens/internal/rates"
	"switchlens/internal/suppression"
)

// AnalyticsService answers statistical queries over a survey dataset
type AnalyticsService struct {
	cfg   config.Config
	cache *bayescache.Cache
	gate  *suppression.Gate
}

// NewAnalyticsService creates an analytics service. cache may be an empty
// (always-miss) cache; every lookup has a live-computation fallback.
func NewAnalyticsService(cfg config.Config, cache *bayescache.Cache) *AnalyticsService {
	return &AnalyticsService{
		cfg:   cfg,
		cache: cache,
		gate:  suppression.NewGate(cfg),
	}
}

// GatedRateResult is a suppression-gated pair of rate results. A side the
// gate disallows is nil regardless of the underlying sample.
type GatedRateResult struct {
	Insurer     *stats.RateResult       `json:"insurer,omitempty"`
	Market      *stats.RateResult       `json:"market,omitempty"`
	Suppression stats.SuppressionResult `json:"suppression"`
	Confidence  stats.ConfidenceLevel   `json:"confidence"`
}

// GatedRate filters the insurer and market segments for the query,
// evaluates the disclosure gate, and computes Wilson-interval rates only
// for the sides that may be shown.
func (s *AnalyticsService) GatedRate(ds *survey.Dataset, outcome rates.Outcome, p filter.Params) GatedRateResult {
	insurerDS := filter.Apply(ds, p)
	marketParams := p
	marketParams.Insurer = ""
	marketDS := filter.Apply(ds, marketParams)

	decision := s.gate.Evaluate(insurerDS, marketDS, s.cfg.MinBasePublishable, p.Active())
	result := GatedRateResult{
		Suppression: decision,
		Confidence:  s.gate.Confidence(insurerDS.Len()),
	}
	if decision.CanShowInsurer {
		result.Insurer = rates.RateWithCI(insurerDS, outcome, s.cfg.ZScore)
	}
	if decision.CanShowMarket {
		result.Market = rates.RateWithCI(marketDS, outcome, s.cfg.ZScore)
	}
	return result
}

// SmoothedRetention returns the Bayesian-smoothed retention rate for an
// insurer segment. When no demographic filter is active the precomputed
// cache is consulted first; on a miss, or with any demographic filter,
// the rate is computed live against the matching market prior. The live
// path is the source of truth; cached entries agree with it by
// construction.
func (s *AnalyticsService) SmoothedRetention(ds *survey.Dataset, p filter.Params) *stats.BayesResult {
	if p.Insurer == "" {
		return nil
	}
	if !p.HasDemographicFilter() {
		if entry := s.cache.Lookup(p.Insurer, p.Product, p.TimeWindowMonths); entry != nil {
			result := bayescache.Result(*entry)
			return &result
		}
	}
	return s.liveSmoothedRetention(ds, p)
}

func (s *AnalyticsService) liveSmoothedRetention(ds *survey.Dataset, p filter.Params) *stats.BayesResult {
	marketParams := p
	marketParams.Insurer = ""
	market := filter.Apply(ds, marketParams)
	marketRate := rates.RetentionRate(market)
	if marketRate == nil {
		// No market base for this context; there is no defensible prior.
		return nil
	}
	segment := filter.Apply(ds, p)
	retained, total := rates.RetainedCount(segment)
	result := bayes.Smooth(retained, total, *marketRate, s.cfg.PriorStrength)
	return &result
}

// Confidence exposes the three-tier disclosure classification for a
// sample size.
func (s *AnalyticsService) Confidence(n int) stats.ConfidenceLevel {
	return s.gate.Confidence(n)
}
