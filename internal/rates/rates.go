// Package rates computes point rates with Wilson-score confidence
// intervals over boolean outcome columns, plus the domain rates built on
// that primitive: shopping, switching, retention and conversion.
//
// The Wilson interval is used instead of the normal (Wald) approximation
// because it stays inside [0,1] and behaves at small n and extreme p,
// which matters for thin survey segments.
package rates

import (
	"math"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

// Outcome selects a boolean outcome column from a respondent
type Outcome func(survey.Respondent) bool

// Standard outcome columns
var (
	Shopper  Outcome = func(r survey.Respondent) bool { return r.IsShopper }
	Switcher Outcome = func(r survey.Respondent) bool { return r.IsSwitcher }
	Retained Outcome = func(r survey.Respondent) bool { return r.IsRetained }
)

// Wilson computes the Wilson score interval for successes out of n at the
// given z. Bounds are clamped to [0,1].
func Wilson(successes, n int, z float64) (lower, upper float64) {
	if n == 0 {
		return 0, 0
	}
	nf := float64(n)
	p := float64(successes) / nf
	denom := 1 + z*z/nf
	centre := (p + z*z/(2*nf)) / denom
	margin := (z / denom) * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf))
	return math.Max(0, centre-margin), math.Min(1, centre+margin)
}

// RateWithCI computes the rate of an outcome over the dataset with a
// Wilson interval at z. Returns nil for an empty dataset.
func RateWithCI(ds *survey.Dataset, outcome Outcome, z float64) *stats.RateResult {
	n := ds.Len()
	if n == 0 {
		return nil
	}
	successes := 0
	for _, r := range ds.Rows() {
		if outcome(r) {
			successes++
		}
	}
	lower, upper := Wilson(successes, n, z)
	return &stats.RateResult{
		Rate:    float64(successes) / float64(n),
		CILower: lower,
		CIUpper: upper,
		N:       n,
	}
}

// ShoppingRate is the fraction of respondents who shopped around at
// renewal. Nil for an empty dataset.
func ShoppingRate(ds *survey.Dataset) *float64 {
	if ds.IsEmpty() {
		return nil
	}
	count := 0
	for _, r := range ds.Rows() {
		if r.IsShopper {
			count++
		}
	}
	rate := float64(count) / float64(ds.Len())
	return &rate
}

// SwitchingRate is the fraction of switchers among respondents with a
// prior policy. New-to-market respondents have nothing to switch from,
// so they are excluded from the denominator.
func SwitchingRate(ds *survey.Dataset) *float64 {
	base := switchingBase(ds)
	if base.IsEmpty() {
		return nil
	}
	count := 0
	for _, r := range base.Rows() {
		if r.IsSwitcher {
			count++
		}
	}
	rate := float64(count) / float64(base.Len())
	return &rate
}

// RetentionRate is 1 minus the switching rate, over the same
// new-to-market-excluded denominator. Derived, never independently
// measured, so the two always sum to one.
func RetentionRate(ds *survey.Dataset) *float64 {
	sw := SwitchingRate(ds)
	if sw == nil {
		return nil
	}
	rate := 1 - *sw
	return &rate
}

// ConversionRate is the fraction of shoppers who went on to switch
func ConversionRate(ds *survey.Dataset) *float64 {
	if ds.IsEmpty() {
		return nil
	}
	shoppers := 0
	converted := 0
	for _, r := range ds.Rows() {
		if !r.IsShopper {
			continue
		}
		shoppers++
		if r.IsSwitcher {
			converted++
		}
	}
	if shoppers == 0 {
		return nil
	}
	rate := float64(converted) / float64(shoppers)
	return &rate
}

// RetainedCount returns retained and total counts over the
// new-to-market-excluded base, the evidence pair the Bayesian smoother
// consumes for retention.
func RetainedCount(ds *survey.Dataset) (retained, total int) {
	base := switchingBase(ds)
	for _, r := range base.Rows() {
		if r.IsRetained {
			retained++
		}
	}
	return retained, base.Len()
}

func switchingBase(ds *survey.Dataset) *survey.Dataset {
	return ds.Select(func(r survey.Respondent) bool { return !r.IsNewToMarket })
}
