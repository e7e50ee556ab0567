package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"CandleAlert/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Candle, error)
	Name() string
}

var ohlcvFields = [5]string{"open", "high", "low", "close", "volume"}

// newHTTPClient builds a client with optional proxy support. A zero timeout
// leaves the client without a deadline of its own.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// validateCandle rejects values no exchange should produce.
func validateCandle(c model.Candle) error {
	for name, v := range map[string]float64{"open": c.Open, "high": c.High, "low": c.Low, "close": c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("invalid %s price %v at %s", name, v, c.Time.Format(time.RFC3339))
		}
	}
	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
		return fmt.Errorf("invalid volume %v at %s", c.Volume, c.Time.Format(time.RFC3339))
	}
	return nil
}

// normalize orders candles oldest to newest, rejects duplicate timestamps and
// keeps at most the newest limit candles.
func normalize(candles []model.Candle, limit int) ([]model.Candle, error) {
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return nil, fmt.Errorf("duplicate candle timestamp %s", candles[i].Time.Format(time.RFC3339))
		}
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}
