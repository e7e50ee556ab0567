package calculator

import (
	"fmt"

	"CandleAlert/internal/model"
)

// Params holds the window sizes used by Compute.
type Params struct {
	MAFast      int
	MAMid       int
	MASlow      int
	VolumeAvg   int
	StochPeriod int
	StochSmooth int
	RSIPeriod   int
	RSIMethod   RSIMethod
}

// DefaultParams returns the reference configuration: MA 20/50/200, volume 20,
// stochastic 14/3 and a 14-row simple-mean RSI.
func DefaultParams() Params {
	return Params{
		MAFast:      20,
		MAMid:       50,
		MASlow:      200,
		VolumeAvg:   20,
		StochPeriod: 14,
		StochSmooth: 3,
		RSIPeriod:   14,
		RSIMethod:   RSIMethodSMA,
	}
}

// Validate checks that every window is positive and the RSI method is known.
func (p Params) Validate() error {
	windows := map[string]int{
		"ma_fast":      p.MAFast,
		"ma_mid":       p.MAMid,
		"ma_slow":      p.MASlow,
		"volume_avg":   p.VolumeAvg,
		"stoch_period": p.StochPeriod,
		"stoch_smooth": p.StochSmooth,
		"rsi_period":   p.RSIPeriod,
	}
	for name, w := range windows {
		if w <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, w)
		}
	}
	switch p.RSIMethod {
	case RSIMethodSMA, RSIMethodWilder:
	default:
		return fmt.Errorf("unknown rsi method %q", p.RSIMethod)
	}
	return nil
}

// Compute derives every indicator column for the candles, in order: moving
// averages, average volume, stochastic, RSI, then the RSI stochastic.
// Each output row depends only on candles at or before it.
func Compute(candles []model.Candle, p Params) []model.IndicatorRow {
	closes := model.Closes(candles)

	ma20 := SMA(candles, p.MAFast)
	ma50 := SMA(candles, p.MAMid)
	ma200 := SMA(candles, p.MASlow)
	avgVol := RollingMean(model.Volumes(candles), p.VolumeAvg)

	k, d := Stochastic(closes, model.Highs(candles), model.Lows(candles), p.StochPeriod, p.StochSmooth)

	var rsi []float64
	if p.RSIMethod == RSIMethodWilder {
		rsi = WilderRSISeries(closes, p.RSIPeriod)
	} else {
		rsi = RSISeries(closes, p.RSIPeriod)
	}
	rsiK, rsiD := StochasticOf(rsi, p.StochPeriod, p.StochSmooth)

	rows := make([]model.IndicatorRow, len(candles))
	for i, c := range candles {
		rows[i] = model.IndicatorRow{
			Candle:    c,
			MA20:      ma20[i],
			MA50:      ma50[i],
			MA200:     ma200[i],
			AvgVolume: avgVol[i],
			K:         k[i],
			D:         d[i],
			RSI:       rsi[i],
			RSIK:      rsiK[i],
			RSID:      rsiD[i],
		}
	}
	return rows
}
