// Package stats holds the result value types the analytics core produces.
// Absence of data is modeled as a nil result (or a nil RawRate inside a
// BayesResult), never as a zero with false confidence.
package stats

import (
	"fmt"

	"switchlens/domain/survey"
)

// RateResult is a point rate with a Wilson-score confidence interval.
// INVARIANTS:
// - 0 <= CILower <= Rate <= CIUpper <= 1
// - N > 0 (a zero-sample rate is a nil *RateResult, not a zero value)
type RateResult struct {
	Rate    float64 `json:"rate"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	N       int     `json:"n"`
}

// BayesResult is a Beta-Binomial smoothed rate.
// INVARIANTS:
// - as trials grows the posterior mean approaches the raw rate
// - ESS = alpha_post + beta_post >= 2 * prior strength
// - RawRate is nil exactly when trials == 0 (fully-shrunk estimate)
type BayesResult struct {
	PosteriorMean float64  `json:"posterior_mean"`
	CILower       float64  `json:"ci_lower"`
	CIUpper       float64  `json:"ci_upper"`
	ESS           float64  `json:"ess"`
	Weight        float64  `json:"weight"`
	RawRate       *float64 `json:"raw_rate"`
}

// ConfidenceLevel is the three-tier disclosure classification of a sample
type ConfidenceLevel string

const (
	ConfidencePublishable ConfidenceLevel = "publishable"
	ConfidenceIndicative  ConfidenceLevel = "indicative"
	ConfidenceSuppressed  ConfidenceLevel = "suppressed"
)

// SuppressionResult is the disclosure-gate decision for one query. The
// boolean flags are the enforcement mechanism; Message and Warning are
// advisory text for the presentation layer. Never cached across calls.
type SuppressionResult struct {
	CanShowInsurer bool   `json:"can_show_insurer"`
	CanShowMarket  bool   `json:"can_show_market"`
	InsurerN       int    `json:"insurer_n"`
	MarketN        int    `json:"market_n"`
	Message        string `json:"message,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

// NetFlow summarizes switcher movement for one insurer
type NetFlow struct {
	Gained int `json:"gained"`
	Lost   int `json:"lost"`
	Net    int `json:"net"`
}

// FlowCell is one previous->current cell of the switching matrix.
// Suppressed cells are excluded from displayed breakdowns but still
// contribute to aggregate totals such as net flow.
type FlowCell struct {
	Previous   string `json:"previous"`
	Current    string `json:"current"`
	Count      int    `json:"count"`
	Suppressed bool   `json:"suppressed"`
}

// FlowCount is one entry of a ranked source/destination breakdown
type FlowCount struct {
	Insurer string `json:"insurer"`
	Count   int    `json:"count"`
}

// DepartedSentiment summarizes how customers who left an insurer scored it.
// Sub-metrics are nil when their question column is absent from the wave.
type DepartedSentiment struct {
	N                int      `json:"n"`
	MeanSatisfaction *float64 `json:"mean_satisfaction,omitempty"`
	NPS              *float64 `json:"nps,omitempty"`
	MeanTenure       *float64 `json:"mean_tenure,omitempty"`
}

// ChannelUsage is the share of a base that used one channel column.
// Channel questions are multi-code, so shares across channels can sum
// past 1.
type ChannelUsage struct {
	Channel string  `json:"channel"`
	Count   int     `json:"count"`
	Pct     float64 `json:"pct"`
}

// FlowShare is one entry of a normalized flow distribution
type FlowShare struct {
	Insurer string  `json:"insurer"`
	Count   int     `json:"count"`
	Pct     float64 `json:"pct"`
}

// ReasonShare is one entry of a reason ranking
type ReasonShare struct {
	Reason string  `json:"reason"`
	Count  int     `json:"count"`
	Pct    float64 `json:"pct"`
}

// ReasonComparison pairs insurer and market rankings for dual-table display
type ReasonComparison struct {
	Insurer []ReasonShare `json:"insurer"`
	Market  []ReasonShare `json:"market"`
}

// RateBand is a rate segmented by a categorical band such as price direction
type RateBand struct {
	Band string  `json:"band"`
	Rate float64 `json:"rate"`
	N    int     `json:"n"`
}

// CacheEntry is one persisted row of the precomputed smoothed-retention
// table, keyed by (insurer, product, time window) with no demographic
// filter applied. Read-only after a rebuild; the whole table is replaced
// on each data refresh. PriorStrength is the value the entry was built
// with, so readers under a different configuration still reconstruct
// the entry's own ESS and weight.
type CacheEntry struct {
	Insurer          string         `db:"insurer" json:"insurer"`
	Product          survey.Product `db:"product" json:"product"`
	TimeWindowMonths int            `db:"time_window_months" json:"time_window_months"`
	N                int            `db:"n" json:"n"`
	RawRate          float64        `db:"raw_rate" json:"raw_rate"`
	PosteriorMean    float64        `db:"posterior_mean" json:"posterior_mean"`
	CILower          float64        `db:"ci_lower" json:"ci_lower"`
	CIUpper          float64        `db:"ci_upper" json:"ci_upper"`
	MarketRate       float64        `db:"market_rate" json:"market_rate"`
	PriorStrength    float64        `db:"prior_strength" json:"prior_strength"`
}

// Key returns the cache key string for logging and diagnostics
func (e CacheEntry) Key() string {
	return fmt.Sprintf("%s/%s/%dm", e.Insurer, e.Product, e.TimeWindowMonths)
}
