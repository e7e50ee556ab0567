package collector

import (
	"context"
	"errors"
	"time"

	"CandleAlert/internal/calculator"
	"CandleAlert/internal/model"

	"go.uber.org/zap"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Candles []model.Candle
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(_ context.Context, _ string, interval model.Interval, limit int) ([]model.Candle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Candles != nil {
		out := make([]model.Candle, len(m.Candles))
		copy(out, m.Candles)
		return normalize(out, limit)
	}
	return generateMockCandles(m.Price, interval, limit, time.Now().UTC()), nil
}

func generateMockCandles(basePrice float64, interval model.Interval, count int, end time.Time) []model.Candle {
	step := interval.Duration()
	if step == 0 {
		step = 15 * time.Minute
	}
	end = end.Truncate(step)
	candles := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		candles[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000,
		}
	}
	return candles
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Interval model.Interval
	Limit    int
	Params   calculator.Params
	Logger   *zap.Logger
}

// NewCollector creates a new Collector using the default indicator parameters.
func NewCollector(fetcher Fetcher, symbol string, interval model.Interval, limit int, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		Fetcher:  fetcher,
		Symbol:   symbol,
		Interval: interval,
		Limit:    limit,
		Params:   calculator.DefaultParams(),
		Logger:   logger,
	}
}

// Fetch retrieves the candle series. Every failure is returned as a *model.FetchError.
func (c *Collector) Fetch(ctx context.Context) ([]model.Candle, error) {
	candles, err := c.Fetcher.FetchCandles(ctx, c.Symbol, c.Interval, c.Limit)
	if err != nil {
		var fe *model.FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &model.FetchError{Source: c.Fetcher.Name(), Err: err}
	}
	if len(candles) < c.Limit {
		c.Logger.Warn("fewer candles than requested",
			zap.String("symbol", c.Symbol),
			zap.Int("requested", c.Limit),
			zap.Int("received", len(candles)))
	}
	c.Logger.Debug("candles fetched",
		zap.String("source", c.Fetcher.Name()),
		zap.String("symbol", c.Symbol),
		zap.String("interval", c.Interval.String()),
		zap.Int("count", len(candles)))
	return candles, nil
}

// Collect fetches market data and computes all indicators.
func (c *Collector) Collect(ctx context.Context) ([]model.IndicatorRow, error) {
	candles, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return calculator.Compute(candles, c.Params), nil
}
