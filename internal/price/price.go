// Package price segments shopping and switching behavior by renewal price
// movement. PriceDirection is a derived categorical column with labels
// Higher, Lower, Unchanged and New ("New" meaning a first policy, with no
// prior premium to compare against).
package price

import (
	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

// PriceDirection and related question columns
const (
	ColDirection = "PriceDirection"
	colSavings   = "Q30"
)

// Band labels in display order
var directions = []string{"Higher", "Lower", "Unchanged", "New"}

// RateFn computes a rate over a segment, e.g. rates.ShoppingRate
type RateFn func(*survey.Dataset) *float64

// DirectionDistribution returns the share of each price direction among
// rows with a known direction. Nil when the column is absent or empty.
func DirectionDistribution(ds *survey.Dataset) []stats.ReasonShare {
	if ds == nil || !ds.Has(ColDirection) {
		return nil
	}
	counts := make(map[string]int)
	total := 0
	for _, r := range ds.Rows() {
		d := r.Answer(ColDirection)
		if d == "" {
			continue
		}
		counts[d]++
		total++
	}
	if total == 0 {
		return nil
	}
	var out []stats.ReasonShare
	for _, d := range directions {
		if counts[d] == 0 {
			continue
		}
		out = append(out, stats.ReasonShare{Reason: d, Count: counts[d], Pct: float64(counts[d]) / float64(total)})
	}
	return out
}

// RateByDirection computes rateFn per price-direction segment, in the
// fixed display order. excludeNew drops new-to-premium rows before
// segmenting, which is the default for switching-style rates.
func RateByDirection(ds *survey.Dataset, rateFn RateFn, excludeNew bool) []stats.RateBand {
	if ds == nil || !ds.Has(ColDirection) {
		return nil
	}
	base := ds
	if excludeNew {
		base = ds.Select(func(r survey.Respondent) bool { return r.Answer(ColDirection) != "New" })
	}
	if base.IsEmpty() {
		return nil
	}
	var out []stats.RateBand
	for _, d := range directions {
		segment := base.Select(func(r survey.Respondent) bool { return r.Answer(ColDirection) == d })
		if segment.IsEmpty() {
			continue
		}
		rate := rateFn(segment)
		if rate == nil {
			continue
		}
		out = append(out, stats.RateBand{Band: d, Rate: *rate, N: segment.Len()})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SwitchingSavings returns the distribution of reported savings bands
// among switchers. Nil when the savings column is absent or no switcher
// answered.
func SwitchingSavings(ds *survey.Dataset) []stats.ReasonShare {
	if ds == nil || !ds.Has(colSavings) {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, r := range ds.Rows() {
		if !r.IsSwitcher {
			continue
		}
		band := r.Answer(colSavings)
		if band == "" {
			continue
		}
		if _, seen := counts[band]; !seen {
			order = append(order, band)
		}
		counts[band]++
		total++
	}
	if total == 0 {
		return nil
	}
	out := make([]stats.ReasonShare, 0, len(order))
	for _, band := range order {
		out = append(out, stats.ReasonShare{Reason: band, Count: counts[band], Pct: float64(counts[band]) / float64(total)})
	}
	return out
}
