package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchlens/domain/survey"
)

const z95 = 1.96

func boolRow(shopper, switcher, retained, newToMarket bool) survey.Respondent {
	return survey.Respondent{
		IsShopper:     shopper,
		IsSwitcher:    switcher,
		IsRetained:    retained,
		IsNewToMarket: newToMarket,
	}
}

// buildScenario creates the reference wave: 200 respondents, 120 shoppers,
// 40 switchers, none new-to-market, the rest retained.
func buildScenario() *survey.Dataset {
	var rows []survey.Respondent
	for i := 0; i < 200; i++ {
		shopper := i < 120
		switcher := i < 40 // switchers shopped
		rows = append(rows, boolRow(shopper, switcher, !switcher, false))
	}
	return survey.NewDataset(rows)
}

func TestWilsonBoundsStayOrdered(t *testing.T) {
	for _, n := range []int{1, 2, 5, 30, 50, 1000} {
		for _, successes := range []int{0, 1, n / 2, n} {
			if successes > n {
				continue
			}
			lower, upper := Wilson(successes, n, z95)
			p := float64(successes) / float64(n)
			assert.GreaterOrEqual(t, lower, 0.0, "n=%d s=%d", n, successes)
			assert.LessOrEqual(t, lower, p, "n=%d s=%d", n, successes)
			assert.GreaterOrEqual(t, upper, p, "n=%d s=%d", n, successes)
			assert.LessOrEqual(t, upper, 1.0, "n=%d s=%d", n, successes)
		}
	}
}

func TestWilsonZeroN(t *testing.T) {
	lower, upper := Wilson(0, 0, z95)
	assert.Zero(t, lower)
	assert.Zero(t, upper)
}

func TestRateWithCI(t *testing.T) {
	ds := buildScenario()
	result := RateWithCI(ds, Shopper, z95)
	require.NotNil(t, result)
	assert.InDelta(t, 0.60, result.Rate, 1e-9)
	assert.Equal(t, 200, result.N)
	assert.Less(t, result.CILower, result.Rate)
	assert.Greater(t, result.CIUpper, result.Rate)
}

func TestRateWithCIEmptyIsNil(t *testing.T) {
	assert.Nil(t, RateWithCI(survey.NewDataset(nil), Shopper, z95))
	assert.Nil(t, RateWithCI(nil, Shopper, z95))
}

func TestScenarioRates(t *testing.T) {
	ds := buildScenario()

	shopping := ShoppingRate(ds)
	require.NotNil(t, shopping)
	assert.InDelta(t, 0.60, *shopping, 1e-9)

	switching := SwitchingRate(ds)
	require.NotNil(t, switching)
	assert.InDelta(t, 0.20, *switching, 1e-9)

	retention := RetentionRate(ds)
	require.NotNil(t, retention)
	assert.InDelta(t, 0.80, *retention, 1e-9)
}

func TestRetentionIsComplementOfSwitching(t *testing.T) {
	rows := []survey.Respondent{
		boolRow(true, true, false, false),
		boolRow(true, false, true, false),
		boolRow(false, false, true, false),
		boolRow(true, true, false, true), // new-to-market, excluded
		boolRow(false, false, true, false),
	}
	ds := survey.NewDataset(rows)

	sw := SwitchingRate(ds)
	ret := RetentionRate(ds)
	require.NotNil(t, sw)
	require.NotNil(t, ret)
	assert.InDelta(t, 1.0, *sw+*ret, 1e-9)
}

func TestSwitchingRateExcludesNewToMarket(t *testing.T) {
	// 2 switchers and 2 retained with prior policies, plus 4 new-to-market
	// rows that would dilute the rate if counted.
	var rows []survey.Respondent
	rows = append(rows,
		boolRow(true, true, false, false),
		boolRow(true, true, false, false),
		boolRow(false, false, true, false),
		boolRow(false, false, true, false),
	)
	for i := 0; i < 4; i++ {
		rows = append(rows, boolRow(false, false, false, true))
	}
	ds := survey.NewDataset(rows)

	sw := SwitchingRate(ds)
	require.NotNil(t, sw)
	assert.InDelta(t, 0.5, *sw, 1e-9)
}

func TestSwitchingRateAllNewToMarketIsNil(t *testing.T) {
	ds := survey.NewDataset([]survey.Respondent{
		boolRow(false, false, false, true),
		boolRow(true, false, false, true),
	})
	assert.Nil(t, SwitchingRate(ds))
	assert.Nil(t, RetentionRate(ds))
}

func TestConversionRate(t *testing.T) {
	ds := buildScenario()
	conv := ConversionRate(ds)
	require.NotNil(t, conv)
	// 40 switchers among 120 shoppers
	assert.InDelta(t, 40.0/120.0, *conv, 1e-9)
}

func TestConversionRateNoShoppersIsNil(t *testing.T) {
	ds := survey.NewDataset([]survey.Respondent{
		boolRow(false, false, true, false),
	})
	assert.Nil(t, ConversionRate(ds))
}

func TestEmptyDatasetRatesAreNil(t *testing.T) {
	empty := survey.NewDataset(nil)
	assert.Nil(t, ShoppingRate(empty))
	assert.Nil(t, SwitchingRate(empty))
	assert.Nil(t, RetentionRate(empty))
	assert.Nil(t, ConversionRate(empty))
}

func TestRetainedCount(t *testing.T) {
	ds := survey.NewDataset([]survey.Respondent{
		boolRow(false, false, true, false),
		boolRow(false, false, true, false),
		boolRow(true, true, false, false),
		boolRow(false, false, false, true), // excluded
	})
	retained, total := RetainedCount(ds)
	assert.Equal(t, 2, retained)
	assert.Equal(t, 3, total)
}
