package calculator

import "math"

// Stochastic computes the fast stochastic oscillator.
// %K = 100 * (close - lowest low) / (highest high - lowest low) over kPeriod rows,
// %D = dPeriod-row mean of %K. A flat range yields NaN rather than a division error.
func Stochastic(closes, highs, lows []float64, kPeriod, dPeriod int) (k, d []float64) {
	lowMin := RollingMin(lows, kPeriod)
	highMax := RollingMax(highs, kPeriod)

	k = nanSeries(len(closes))
	for i := range closes {
		rng := highMax[i] - lowMin[i]
		if math.IsNaN(rng) || rng == 0 || math.IsNaN(closes[i]) {
			continue
		}
		k[i] = 100 * ((closes[i] - lowMin[i]) / rng)
	}
	d = RollingMean(k, dPeriod)
	return k, d
}

// StochasticOf applies the stochastic formula to a single series, using it as
// close, high and low at once. Used for the RSI stochastic.
func StochasticOf(series []float64, kPeriod, dPeriod int) (k, d []float64) {
	return Stochastic(series, series, series, kPeriod, dPeriod)
}
