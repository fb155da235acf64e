// Package bayes shrinks small-sample segment rates toward a market-level
// prior with a Beta-Binomial model. Small insurers have too few
// respondents for a raw rate to be trustworthy; the posterior blends the
// observed rate with the market rate in proportion to sample size.
package bayes

import (
	"gonum.org/v1/gonum/stat/distuv"

	"switchlens/domain/stats"
)

// Credible interval percentiles (2.5th / 97.5th)
const (
	lowerQuantile = 0.025
	upperQuantile = 0.975
)

// Smooth applies Beta-Binomial shrinkage to successes out of trials.
//
// priorMean must be the market rate for the same product, time window and
// demographic context as the segment being smoothed; a mismatched prior
// silently biases the posterior. priorStrength is the equivalent number
// of prior observations.
//
// Zero trials is a defined case, not an error: the result is the prior
// mean with zero weight, so segments with no data for the requested
// insurer still render a fully-shrunk estimate.
func Smooth(successes, trials int, priorMean, priorStrength float64) stats.BayesResult {
	if trials == 0 {
		return stats.BayesResult{
			PosteriorMean: priorMean,
			CILower:       priorMean,
			CIUpper:       priorMean,
			ESS:           2 * priorStrength,
			Weight:        0,
			RawRate:       nil,
		}
	}

	// Keep the prior proper when the market rate is exactly 0 or 1,
	// otherwise the posterior Beta is degenerate.
	pm := priorMean
	if pm <= 0 {
		pm = 1e-9
	} else if pm >= 1 {
		pm = 1 - 1e-9
	}

	alphaPrior := pm * priorStrength
	betaPrior := (1 - pm) * priorStrength
	alphaPost := alphaPrior + float64(successes)
	betaPost := betaPrior + float64(trials-successes)

	// Exact Beta quantiles, not a normal approximation; the posterior is
	// skewed at the small sample sizes this exists for.
	posterior := distuv.Beta{Alpha: alphaPost, Beta: betaPost}

	raw := float64(successes) / float64(trials)
	ess := alphaPost + betaPost
	return stats.BayesResult{
		PosteriorMean: alphaPost / ess,
		CILower:       posterior.Quantile(lowerQuantile),
		CIUpper:       posterior.Quantile(upperQuantile),
		ESS:           ess,
		Weight:        float64(trials) / ess,
		RawRate:       &raw,
	}
}
