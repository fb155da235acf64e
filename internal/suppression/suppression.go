// Package suppression enforces minimum-sample-size disclosure rules. A
// statistic computed from too few respondents is unreliable and risks
// re-identifying individuals, so the gate decides per query whether the
// insurer and market sides may be shown at all.
package suppression

import (
	"fmt"
	"strings"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
	"switchlens/internal/config"
	"switchlens/internal/filter"
)

// Gate evaluates disclosure thresholds against the governance config
type Gate struct {
	cfg config.Config
}

// NewGate creates a suppression gate
func NewGate(cfg config.Config) *Gate {
	return &Gate{cfg: cfg}
}

// Evaluate decides whether the insurer and market segments meet their
// disclosure thresholds. minBase overrides the insurer threshold when
// positive; the market threshold is always the (higher) market minimum,
// because market aggregates are shown unconditionally to all users.
//
// The decision depends on current filter state and is never cached.
func (g *Gate) Evaluate(insurerDS, marketDS *survey.Dataset, minBase int, active []filter.Field) stats.SuppressionResult {
	if minBase <= 0 {
		minBase = g.cfg.MinBasePublishable
	}
	insurerN := insurerDS.Len()
	marketN := marketDS.Len()

	result := stats.SuppressionResult{
		CanShowInsurer: insurerN >= minBase,
		CanShowMarket:  marketN >= g.cfg.MinBaseMarket,
		InsurerN:       insurerN,
		MarketN:        marketN,
	}

	if !result.CanShowInsurer {
		result.Message = shortfallMessage(insurerN, minBase, active)
	}

	// Advisory only: with two or more demographic filters stacked, few
	// insurers tend to clear the threshold. Fixed heuristic, not computed
	// from actual eligible counts.
	if len(active) >= 2 {
		result.Warning = fmt.Sprintf(
			"Fewer than %d insurers may meet the threshold with the current filter combination.",
			g.cfg.MinEligibleInsurersWarning,
		)
	}

	return result
}

// Confidence classifies a sample size into the three disclosure tiers.
// Exposed for UI labeling; the CanShow flags remain the enforcement.
func (g *Gate) Confidence(n int) stats.ConfidenceLevel {
	switch {
	case n >= g.cfg.MinBasePublishable:
		return stats.ConfidencePublishable
	case n >= g.cfg.MinBaseIndicative:
		return stats.ConfidenceIndicative
	default:
		return stats.ConfidenceSuppressed
	}
}

func shortfallMessage(n, minBase int, active []filter.Field) string {
	msg := fmt.Sprintf("Insufficient data: %d responses (minimum %d required). ", n, minBase)
	if len(active) == 0 {
		return msg + "Try broadening your selection."
	}
	parts := make([]string, 0, len(active))
	for _, f := range active {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	return msg + fmt.Sprintf("Active filters: %s. Try broadening your selection.", strings.Join(parts, ", "))
}
