package calculator

import (
	"math"

	"github.com/montanaflynn/stats"
)

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// rolling applies agg to every trailing window of the given size.
// Rows before the window fills, and windows that contain NaN, stay NaN.
func rolling(values []float64, window int, agg func(stats.Float64Data) (float64, error)) []float64 {
	out := nanSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if hasNaN(w) {
			continue
		}
		v, err := agg(w)
		if err != nil {
			continue
		}
		out[i] = v
	}
	return out
}

// RollingMean returns the trailing simple mean over window rows.
func RollingMean(values []float64, window int) []float64 {
	return rolling(values, window, stats.Mean)
}

// RollingMin returns the trailing minimum over window rows.
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, stats.Min)
}

// RollingMax returns the trailing maximum over window rows.
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, stats.Max)
}
