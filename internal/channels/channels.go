// Package channels analyzes how shoppers researched and bought cover:
// channel usage, first channel used, price-comparison website (PCW)
// usage, and per-PCW scores and purchase behavior. Channel and PCW
// questions are multi-code, one column per code, so usage shares can
// sum past 1.
package channels

import (
	"sort"
	"strconv"
	"strings"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
	"switchlens/internal/reasons"
)

// Question columns
const (
	prefixChannel  = "Q9b"
	prefixPCW      = "Q11_"
	colFirstUsed   = "Q13a"
	colUsedPCW     = "UsedPCW"
	colPCWScore    = "Q11d"
	colPCWPurchase = "Q36"
	colQuoteMethod = "Q37"
	colQuoted      = "Q13b"
)

// Usage returns the share of shoppers using each channel, highest first.
// Nil when no channel columns are in the wave or the subset has no
// shoppers.
func Usage(ds *survey.Dataset) []stats.ChannelUsage {
	return columnUsage(ds, prefixChannel, shoppers(ds))
}

// FirstUsed returns the distribution of the channel shoppers used first,
// normalized over the answered base. Nil when the column is absent or no
// shopper answered.
func FirstUsed(ds *survey.Dataset) []stats.ReasonShare {
	return reasons.Ranking(shoppers(ds), colFirstUsed, 0)
}

// PCWUsage returns the share of PCW users who used each comparison site,
// highest first. Nil when the PCW columns are absent or nobody used one.
func PCWUsage(ds *survey.Dataset) []stats.ChannelUsage {
	return columnUsage(ds, prefixPCW, pcwUsers(ds))
}

// PCWNPS returns the NPS for one comparison site among the respondents
// who used it (promoters >= 9, detractors <= 6 on the score column).
// Users who skipped the score still count in the base. Nil when the
// score or site column is absent, or the site has no users.
func PCWNPS(ds *survey.Dataset, pcw string) *float64 {
	if ds == nil || !ds.Has(colPCWScore) {
		return nil
	}
	users := siteUsers(ds, pcw)
	if users.IsEmpty() {
		return nil
	}
	promoters, detractors := 0, 0
	for _, r := range users.Rows() {
		v, err := strconv.ParseFloat(r.Answer(colPCWScore), 64)
		if err != nil {
			continue
		}
		switch {
		case v >= 9:
			promoters++
		case v <= 6:
			detractors++
		}
	}
	nps := 100 * float64(promoters-detractors) / float64(users.Len())
	return &nps
}

// PCWPurchaseRate returns the share of a site's users who bought through
// it. Nil when the purchase or site column is absent, or the site has no
// users.
func PCWPurchaseRate(ds *survey.Dataset, pcw string) *float64 {
	if ds == nil || !ds.Has(colPCWPurchase) {
		return nil
	}
	users := siteUsers(ds, pcw)
	if users.IsEmpty() {
		return nil
	}
	purchased := 0
	for _, r := range users.Rows() {
		if code(r.Answer(colPCWPurchase)) == 1 {
			purchased++
		}
	}
	rate := float64(purchased) / float64(users.Len())
	return &rate
}

// QuoteBuyMismatch returns the share of respondents who got their quote
// through one method and bought through another (code 2 on the
// quote-method question), over the answered base. Nil when the column is
// absent or unanswered.
func QuoteBuyMismatch(ds *survey.Dataset) *float64 {
	if ds == nil || !ds.Has(colQuoteMethod) {
		return nil
	}
	answered, mismatch := 0, 0
	for _, r := range ds.Rows() {
		c := code(r.Answer(colQuoteMethod))
		if c < 0 {
			continue
		}
		answered++
		if c == 2 {
			mismatch++
		}
	}
	if answered == 0 {
		return nil
	}
	rate := float64(mismatch) / float64(answered)
	return &rate
}

// QuoteReach counts the shoppers whose quoted-insurers answer mentions
// the insurer. The answer cell is a multi-select list, so this is a
// case-insensitive substring match.
func QuoteReach(ds *survey.Dataset, insurer string) int {
	if ds == nil || !ds.Has(colQuoted) || insurer == "" {
		return 0
	}
	target := strings.ToLower(insurer)
	count := 0
	for _, r := range ds.Rows() {
		if !r.IsShopper {
			continue
		}
		if strings.Contains(strings.ToLower(r.Answer(colQuoted)), target) {
			count++
		}
	}
	return count
}

func shoppers(ds *survey.Dataset) *survey.Dataset {
	return ds.Select(func(r survey.Respondent) bool { return r.IsShopper })
}

func pcwUsers(ds *survey.Dataset) *survey.Dataset {
	if ds == nil || !ds.Has(colUsedPCW) {
		return nil
	}
	return ds.Select(func(r survey.Respondent) bool { return code(r.Answer(colUsedPCW)) > 0 })
}

func siteUsers(ds *survey.Dataset, pcw string) *survey.Dataset {
	col := pcwColumn(pcw)
	if ds == nil || !ds.Has(col) {
		return nil
	}
	return ds.Select(func(r survey.Respondent) bool { return code(r.Answer(col)) > 0 })
}

// pcwColumn accepts either a bare site code ("GoQuote") or a full column
// name ("Q11_GoQuote").
func pcwColumn(pcw string) string {
	if strings.HasPrefix(pcw, "Q11") {
		return pcw
	}
	return prefixPCW + pcw
}

// columnUsage counts positive codes per column over the base, ranked by
// count descending with column-name order breaking ties.
func columnUsage(ds *survey.Dataset, prefix string, base *survey.Dataset) []stats.ChannelUsage {
	cols := ds.ColumnsWithPrefix(prefix)
	if len(cols) == 0 || base.IsEmpty() {
		return nil
	}
	out := make([]stats.ChannelUsage, 0, len(cols))
	for _, col := range cols {
		used := 0
		for _, r := range base.Rows() {
			if code(r.Answer(col)) > 0 {
				used++
			}
		}
		out = append(out, stats.ChannelUsage{
			Channel: col,
			Count:   used,
			Pct:     float64(used) / float64(base.Len()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// code parses a coded answer cell, returning -1 when blank or non-numeric
func code(s string) int {
	if s == "" {
		return -1
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}
