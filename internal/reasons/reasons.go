// Package reasons ranks categorical question responses (why respondents
// shopped, switched, or stayed) and pairs insurer rankings with market
// rankings for side-by-side display.
package reasons

import (
	"sort"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

// Ranking returns the topN answers to a question column with counts and
// shares of the answered base. Nil when the column is absent from the
// wave or nobody answered. Ties keep first-encounter order.
func Ranking(ds *survey.Dataset, questionCol string, topN int) []stats.ReasonShare {
	if ds == nil || !ds.Has(questionCol) {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, r := range ds.Rows() {
		answer := r.Answer(questionCol)
		if answer == "" {
			continue
		}
		if _, seen := counts[answer]; !seen {
			order = append(order, answer)
		}
		counts[answer]++
		total++
	}
	if total == 0 {
		return nil
	}

	ranked := make([]stats.ReasonShare, 0, len(order))
	for _, reason := range order {
		ranked = append(ranked, stats.ReasonShare{
			Reason: reason,
			Count:  counts[reason],
			Pct:    float64(counts[reason]) / float64(total),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Comparison pairs the insurer and market rankings for one question. Nil
// when neither side has data; an empty side comes back as an empty slice
// so the dual table still renders.
func Comparison(insurerDS, marketDS *survey.Dataset, questionCol string, topN int) *stats.ReasonComparison {
	insurerRank := Ranking(insurerDS, questionCol, topN)
	marketRank := Ranking(marketDS, questionCol, topN)
	if insurerRank == nil && marketRank == nil {
		return nil
	}
	if insurerRank == nil {
		insurerRank = []stats.ReasonShare{}
	}
	if marketRank == nil {
		marketRank = []stats.ReasonShare{}
	}
	return &stats.ReasonComparison{Insurer: insurerRank, Market: marketRank}
}

// Primary returns the single most common answer, or "" when unavailable
func Primary(ds *survey.Dataset, questionCol string) string {
	ranked := Ranking(ds, questionCol, 1)
	if len(ranked) == 0 {
		return ""
	}
	return ranked[0].Reason
}
