package model

// IndicatorRow is a candle extended with its derived indicator values.
// A value is NaN when its rolling window does not have enough history.
type IndicatorRow struct {
	Candle

	MA20      float64
	MA50      float64
	MA200     float64
	AvgVolume float64
	K         float64
	D         float64
	RSI       float64
	RSIK      float64
	RSID      float64
}
