// Package filter selects sub-populations from a survey dataset by product,
// renewal time window, and demographic attributes. Filtering is a pure
// projection: an empty input yields an empty output, never an error.
package filter

import (
	"switchlens/domain/survey"
)

// Params describes one segment selection. Empty string means "no filter"
// for the optional fields; sentinel values like "ALL" must be resolved to
// "" at the boundary before reaching this package.
type Params struct {
	Product          survey.Product
	TimeWindowMonths int // <= 0 disables time filtering
	Insurer          string
	AgeBand          string
	Region           string
	PaymentType      string
}

// Field is one active demographic filter, in display order
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Apply materializes the segment described by p. The product restriction
// always applies; the time window is computed against the latest renewal
// month present in the product-filtered data; demographic filters apply
// only when set. Age bands, regions and payment types are opaque labels
// compared by exact equality.
func Apply(ds *survey.Dataset, p Params) *survey.Dataset {
	if ds == nil || ds.IsEmpty() {
		return ds
	}
	out := ds.Select(func(r survey.Respondent) bool {
		return r.Product == p.Product
	})
	out = applyTimeWindow(out, p.TimeWindowMonths)
	if p.AgeBand != "" {
		out = out.Select(func(r survey.Respondent) bool { return r.AgeBand == p.AgeBand })
	}
	if p.Region != "" {
		out = out.Select(func(r survey.Respondent) bool { return r.Region == p.Region })
	}
	if p.PaymentType != "" {
		out = out.Select(func(r survey.Respondent) bool { return r.PaymentType == p.PaymentType })
	}
	if p.Insurer != "" {
		out = out.Select(func(r survey.Respondent) bool { return r.CurrentCompany == p.Insurer })
	}
	return out
}

// applyTimeWindow keeps rows within the last months of renewal activity.
// The floor is calendar arithmetic on YYYYMM, not day counting: subtract
// whole years, then months, borrowing a year when the month goes
// non-positive.
func applyTimeWindow(ds *survey.Dataset, months int) *survey.Dataset {
	if months <= 0 {
		return ds
	}
	maxYM := ds.MaxRenewalYearMonth()
	if maxYM == 0 {
		// No renewal-month column in this wave; time filtering unavailable.
		return ds
	}
	floor := windowFloor(maxYM, months)
	return ds.Select(func(r survey.Respondent) bool {
		return r.RenewalYearMonth >= floor
	})
}

// windowFloor computes the YYYYMM lower bound months before maxYM
func windowFloor(maxYM, months int) int {
	year := maxYM / 100
	month := maxYM % 100
	minYear := year - months/12
	minMonth := month - months%12
	if minMonth <= 0 {
		minMonth += 12
		minYear--
	}
	return minYear*100 + minMonth
}

// ActiveFilters returns the non-empty demographic filters in display
// order: Age Band, Region, Payment Type. Used for suppression messaging
// and UI context.
func ActiveFilters(ageBand, region, paymentType string) []Field {
	var active []Field
	if ageBand != "" {
		active = append(active, Field{Name: "Age Band", Value: ageBand})
	}
	if region != "" {
		active = append(active, Field{Name: "Region", Value: region})
	}
	if paymentType != "" {
		active = append(active, Field{Name: "Payment Type", Value: paymentType})
	}
	return active
}

// HasDemographicFilter reports whether any optional demographic filter is
// set. Cache lookups are valid only when this is false.
func (p Params) HasDemographicFilter() bool {
	return p.AgeBand != "" || p.Region != "" || p.PaymentType != ""
}

// Active returns the params' demographic filters in display order
func (p Params) Active() []Field {
	return ActiveFilters(p.AgeBand, p.Region, p.PaymentType)
}
