package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStochastic_FlatRangeIsNaN(t *testing.T) {
	n := 20
	flat := make([]float64, n)
	for i := range flat {
		flat[i] = 42
	}
	k, d := Stochastic(flat, flat, flat, 14, 3)
	for i := 0; i < n; i++ {
		assert.True(t, math.IsNaN(k[i]), "K row %d", i)
		assert.True(t, math.IsNaN(d[i]), "D row %d", i)
	}
}

func TestStochastic_KnownValues(t *testing.T) {
	closes := []float64{10, 11, 12, 13}
	highs := []float64{11, 12, 13, 14}
	lows := []float64{9, 10, 11, 12}
	k, d := Stochastic(closes, highs, lows, 3, 2)

	assert.True(t, math.IsNaN(k[1]))
	// Row 2: low min 9, high max 13, close 12.
	assert.InDelta(t, 75.0, k[2], 1e-12)
	// Row 3: low min 10, high max 14, close 13.
	assert.InDelta(t, 75.0, k[3], 1e-12)
	assert.True(t, math.IsNaN(d[2]))
	assert.InDelta(t, 75.0, d[3], 1e-12)
}

func TestStochastic_Bounded(t *testing.T) {
	candles := waveCandles(100)
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i], highs[i], lows[i] = c.Close, c.High, c.Low
	}
	k, _ := Stochastic(closes, highs, lows, 14, 3)
	for i, v := range k {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "row %d", i)
		assert.LessOrEqual(t, v, 100.0, "row %d", i)
	}
}

func TestStochasticOf_UsesSeriesAsRange(t *testing.T) {
	series := []float64{math.NaN(), 10, 20, 30, 15}
	k, _ := StochasticOf(series, 3, 2)
	assert.True(t, math.IsNaN(k[2]))
	assert.InDelta(t, 100.0, k[3], 1e-12)
	// Window {20, 30, 15}: (15-15)/(30-15).
	assert.InDelta(t, 0.0, k[4], 1e-12)
}

func TestStochasticOf_WindowHighIsExactly100(t *testing.T) {
	series := []float64{
		31.25, 44.871, 52.06, 60.4, 58.9, 66.13, 70.002, 69.5,
		71.3, 73.8, 72.1, 75.45, 76.9, 77.796147939071375,
	}
	k, _ := StochasticOf(series, 14, 3)
	assert.Equal(t, 100.0, k[13])

	rows := Compute(waveCandles(200), DefaultParams())
	for i := 14; i < len(rows); i++ {
		hi := rows[i].RSI
		for j := i - 13; j <= i; j++ {
			hi = math.Max(hi, rows[j].RSI)
		}
		if math.IsNaN(rows[i].RSIK) || rows[i].RSI != hi {
			continue
		}
		assert.Equal(t, 100.0, rows[i].RSIK, "row %d", i)
	}
}
