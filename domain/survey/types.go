// Package survey defines the immutable respondent-level data model the
// analytics core operates on. The loading/normalization pipeline that
// produces these rows is an external collaborator; by the time a Dataset
// exists, columns are clean, derived booleans are set, and sentinel
// filter values ("ALL", "") have been resolved away.
package survey

import (
	"sort"
	"strings"
)

// Product identifies an insurance product line
type Product string

// Supported product lines
const (
	ProductMotor Product = "Motor"
	ProductHome  Product = "Home"
)

// Respondent is one survey response row. Immutable once loaded.
//
// IsRetained and IsSwitcher are mutually exclusive once IsNewToMarket is
// excluded; a new-to-market respondent has no prior policy and is dropped
// from switching/retention denominators by the rate calculator.
type Respondent struct {
	UniqueID         string  `json:"unique_id"`
	Product          Product `json:"product"`
	RenewalYearMonth int     `json:"renewal_year_month"` // YYYYMM, 0 when unknown
	CurrentCompany   string  `json:"current_company"`
	PreviousCompany  string  `json:"previous_company"`
	AgeBand          string  `json:"age_band"`
	Region           string  `json:"region"`
	PaymentType      string  `json:"payment_type"`
	IsShopper        bool    `json:"is_shopper"`
	IsSwitcher       bool    `json:"is_switcher"`
	IsRetained       bool    `json:"is_retained"`
	IsNewToMarket    bool    `json:"is_new_to_market"`

	// Answers holds optional question-response columns (Q8, Q30, Q40a, ...)
	// keyed by column name. Empty string means unanswered.
	Answers map[string]string `json:"answers,omitempty"`
}

// Answer returns the respondent's answer for an optional question column,
// or "" when unanswered.
func (r Respondent) Answer(column string) string {
	if r.Answers == nil {
		return ""
	}
	return r.Answers[column]
}

// Dataset is an immutable table of respondents plus the set of optional
// question columns available in this survey wave. Different waves carry
// different question sets, so each analytic checks Has() before depending
// on a column and returns nil when it is absent.
type Dataset struct {
	rows    []Respondent
	columns map[string]bool
}

// NewDataset creates a dataset from rows and the optional question columns
// the wave provides. Rows are held by reference; callers must not mutate
// them afterwards.
func NewDataset(rows []Respondent, optionalColumns ...string) *Dataset {
	cols := make(map[string]bool, len(optionalColumns))
	for _, c := range optionalColumns {
		cols[c] = true
	}
	return &Dataset{rows: rows, columns: cols}
}

// Rows returns the underlying respondent rows. Read-only by convention.
func (d *Dataset) Rows() []Respondent {
	if d == nil {
		return nil
	}
	return d.rows
}

// Len returns the number of respondents
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// IsEmpty reports whether the dataset has no rows
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// Has reports whether an optional question column is available in this wave
func (d *Dataset) Has(column string) bool {
	if d == nil {
		return false
	}
	return d.columns[column]
}

// Select returns a new dataset containing the rows matching pred, sharing
// the column-availability set. This is the primitive every filter builds on.
func (d *Dataset) Select(pred func(Respondent) bool) *Dataset {
	if d == nil {
		return nil
	}
	var kept []Respondent
	for _, r := range d.rows {
		if pred(r) {
			kept = append(kept, r)
		}
	}
	return &Dataset{rows: kept, columns: d.columns}
}

// Insurers returns the distinct non-empty current insurers in first-seen
// order. Encounter order is the tie-break everywhere downstream, so it
// must be deterministic for a fixed input.
func (d *Dataset) Insurers() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.rows {
		if r.CurrentCompany == "" || seen[r.CurrentCompany] {
			continue
		}
		seen[r.CurrentCompany] = true
		out = append(out, r.CurrentCompany)
	}
	return out
}

// ColumnsWithPrefix returns the optional question columns sharing a
// prefix, sorted for deterministic iteration. Multi-code questions are
// spread across one column per code (Q9b_1, Q9b_2, ...) and located
// this way.
func (d *Dataset) ColumnsWithPrefix(prefix string) []string {
	if d == nil {
		return nil
	}
	var out []string
	for c := range d.columns {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// MaxRenewalYearMonth returns the latest renewal YYYYMM present, or 0 when
// no row carries one.
func (d *Dataset) MaxRenewalYearMonth() int {
	max := 0
	for _, r := range d.Rows() {
		if r.RenewalYearMonth > max {
			max = r.RenewalYearMonth
		}
	}
	return max
}
