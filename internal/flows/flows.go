// Package flows aggregates customer movement between insurers: the full
// switcher transition matrix, per-insurer gained/lost/net, and ranked
// source/destination breakdowns. Only switcher records with a known,
// non-empty previous insurer contribute.
package flows

import (
	"fmt"
	"sort"
	"strconv"

	mstats "github.com/montanaflynn/stats"

	"switchlens/domain/stats"
	"switchlens/domain/survey"
)

type cellKey struct {
	previous string
	current  string
}

// Matrix is a sparse previous->current switch-count matrix. Cell and
// insurer orders are first-encounter orders over the input, which makes
// every derived ranking deterministic for a fixed dataset.
type Matrix struct {
	counts map[cellKey]int
	order  []cellKey
}

// BuildMatrix aggregates the switching matrix from the dataset
func BuildMatrix(ds *survey.Dataset) *Matrix {
	m := &Matrix{counts: make(map[cellKey]int)}
	for _, r := range ds.Rows() {
		if !r.IsSwitcher || r.PreviousCompany == "" {
			continue
		}
		k := cellKey{previous: r.PreviousCompany, current: r.CurrentCompany}
		if _, seen := m.counts[k]; !seen {
			m.order = append(m.order, k)
		}
		m.counts[k]++
	}
	return m
}

// Count returns the switch count for one previous->current pair
func (m *Matrix) Count(previous, current string) int {
	return m.counts[cellKey{previous: previous, current: current}]
}

// Total returns the total number of switches in the matrix. Summing along
// either axis gives the same value (conservation law); tests verify this
// against TotalOut/TotalIn.
func (m *Matrix) Total() int {
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return total
}

// Validate checks the conservation law: switches counted out of all
// sources must equal switches counted into all destinations. A mismatch
// indicates a defect in upstream data or the aggregation itself, so this
// is surfaced as an error for tests and debug assertions rather than
// handled at runtime.
func (m *Matrix) Validate() error {
	sources := make(map[string]bool)
	destinations := make(map[string]bool)
	for k := range m.counts {
		sources[k.previous] = true
		destinations[k.current] = true
	}
	out, in := 0, 0
	for s := range sources {
		out += m.TotalOut(s)
	}
	for d := range destinations {
		in += m.TotalIn(d)
	}
	total := m.Total()
	if out != total || in != total {
		return fmt.Errorf("flow conservation violated: out=%d in=%d total=%d", out, in, total)
	}
	return nil
}

// TotalOut returns switches out of one insurer (row sum)
func (m *Matrix) TotalOut(insurer string) int {
	total := 0
	for k, c := range m.counts {
		if k.previous == insurer {
			total += c
		}
	}
	return total
}

// TotalIn returns switches into one insurer (column sum)
func (m *Matrix) TotalIn(insurer string) int {
	total := 0
	for k, c := range m.counts {
		if k.current == insurer {
			total += c
		}
	}
	return total
}

// Cells returns every cell in encounter order, flagging those below
// minCell as suppressed. Suppressed cells are excluded from displayed
// breakdowns but still counted in aggregate totals.
func (m *Matrix) Cells(minCell int) []stats.FlowCell {
	out := make([]stats.FlowCell, 0, len(m.order))
	for _, k := range m.order {
		count := m.counts[k]
		out = append(out, stats.FlowCell{
			Previous:   k.previous,
			Current:    k.current,
			Count:      count,
			Suppressed: count < minCell,
		})
	}
	return out
}

// CellSuppressed reports whether a flow cell count is below the minimum
// disclosure threshold.
func CellSuppressed(count, minCell int) bool {
	return count < minCell
}

// NetFlow computes gained (switched to), lost (switched from) and net for
// one insurer. Suppression never applies here: suppressed cells still
// contribute to totals.
func NetFlow(ds *survey.Dataset, insurer string) stats.NetFlow {
	gained, lost := 0, 0
	for _, r := range ds.Rows() {
		if !r.IsSwitcher || r.PreviousCompany == "" {
			continue
		}
		if r.CurrentCompany == insurer {
			gained++
		}
		if r.PreviousCompany == insurer {
			lost++
		}
	}
	return stats.NetFlow{Gained: gained, Lost: lost, Net: gained - lost}
}

// TopSources ranks the insurers sending the most customers to the target,
// truncated to n. Ties keep first-encounter order.
func TopSources(ds *survey.Dataset, insurer string, n int) []stats.FlowCount {
	return rankCounterparts(ds, n, func(r survey.Respondent) (string, bool) {
		if r.CurrentCompany != insurer {
			return "", false
		}
		return r.PreviousCompany, true
	})
}

// TopDestinations ranks the insurers receiving the most customers from
// the target, truncated to n. Ties keep first-encounter order.
func TopDestinations(ds *survey.Dataset, insurer string, n int) []stats.FlowCount {
	return rankCounterparts(ds, n, func(r survey.Respondent) (string, bool) {
		if r.PreviousCompany != insurer {
			return "", false
		}
		return r.CurrentCompany, true
	})
}

// PctOfLost returns where an insurer's lost customers went, each
// destination as a share of everyone it lost. Nil when nobody left.
func PctOfLost(ds *survey.Dataset, insurer string) []stats.FlowShare {
	ranked := TopDestinations(ds, insurer, 0)
	if len(ranked) == 0 {
		return nil
	}
	total := 0
	for _, f := range ranked {
		total += f.Count
	}
	out := make([]stats.FlowShare, 0, len(ranked))
	for _, f := range ranked {
		out = append(out, stats.FlowShare{
			Insurer: f.Insurer,
			Count:   f.Count,
			Pct:     float64(f.Count) / float64(total),
		})
	}
	return out
}

func rankCounterparts(ds *survey.Dataset, n int, counterpart func(survey.Respondent) (string, bool)) []stats.FlowCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range ds.Rows() {
		if !r.IsSwitcher || r.PreviousCompany == "" {
			continue
		}
		name, ok := counterpart(r)
		if !ok || name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}
	ranked := make([]stats.FlowCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, stats.FlowCount{Insurer: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Question columns consumed by DepartedSentiment
const (
	colSatisfaction = "Q40a"
	colRecommend    = "Q40b"
	colTenure       = "Q40"
)

// DepartedSentiment summarizes how the customers who left an insurer
// scored it: mean satisfaction, NPS (promoters >= 9, detractors <= 6) and
// mean tenure. Each sub-metric is nil when its question column is absent
// from the wave. Nil overall when nobody departed.
func DepartedSentiment(ds *survey.Dataset, insurer string) *stats.DepartedSentiment {
	departed := ds.Select(func(r survey.Respondent) bool {
		return r.IsSwitcher && r.PreviousCompany == insurer
	})
	if departed.IsEmpty() {
		return nil
	}
	result := &stats.DepartedSentiment{N: departed.Len()}
	if ds.Has(colSatisfaction) {
		result.MeanSatisfaction = meanOf(departed, colSatisfaction)
	}
	if ds.Has(colRecommend) {
		result.NPS = npsOf(departed, colRecommend)
	}
	if ds.Has(colTenure) {
		result.MeanTenure = meanOf(departed, colTenure)
	}
	return result
}

func meanOf(ds *survey.Dataset, column string) *float64 {
	values := numericAnswers(ds, column)
	if len(values) == 0 {
		return nil
	}
	mean, err := mstats.Mean(values)
	if err != nil {
		return nil
	}
	return &mean
}

func npsOf(ds *survey.Dataset, column string) *float64 {
	values := numericAnswers(ds, column)
	if len(values) == 0 {
		return nil
	}
	promoters, detractors := 0, 0
	for _, v := range values {
		switch {
		case v >= 9:
			promoters++
		case v <= 6:
			detractors++
		}
	}
	nps := 100 * float64(promoters-detractors) / float64(len(values))
	return &nps
}

func numericAnswers(ds *survey.Dataset, column string) []float64 {
	var out []float64
	for _, r := range ds.Rows() {
		raw := r.Answer(column)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
