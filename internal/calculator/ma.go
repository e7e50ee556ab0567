package calculator

import "CandleAlert/internal/model"

// SMA returns the rolling simple moving average of close prices.
func SMA(candles []model.Candle, period int) []float64 {
	return RollingMean(model.Closes(candles), period)
}
