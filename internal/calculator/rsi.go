package calculator

import "math"

// RSIMethod selects how average gain and loss are smoothed.
type RSIMethod string

const (
	// RSIMethodSMA averages gains and losses with a simple rolling mean.
	RSIMethodSMA RSIMethod = "sma"
	// RSIMethodWilder uses Wilder's recursive smoothing.
	RSIMethodWilder RSIMethod = "wilder"
)

// gainsLosses splits close-to-close deltas into gains and losses.
// Row 0 has no delta and counts as zero for both.
func gainsLosses(closes []float64) (gains, losses []float64) {
	gains = make([]float64, len(closes))
	losses = make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}
	return gains, losses
}

// rsiFromAverages maps RS = gain/loss to 100 - 100/(1+RS).
// A zero loss gives RS = +Inf and RSI = 100; 0/0 stays NaN.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// RSISeries computes the RSI for every row using trailing simple means of
// gains and losses over period rows.
func RSISeries(closes []float64, period int) []float64 {
	gains, losses := gainsLosses(closes)
	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	out := nanSeries(len(closes))
	for i := range closes {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		out[i] = rsiFromAverages(avgGain[i], avgLoss[i])
	}
	return out
}

// WilderRSISeries computes the RSI for every row with Wilder smoothing.
// The first value appears at row period, seeded with the simple mean of the
// first period deltas.
func WilderRSISeries(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	gains, losses := gainsLosses(closes)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}
