package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CandleAlert/internal/model"

	binance "github.com/adshao/go-binance/v2"
)

// KlinesService is the subset of the go-binance klines service the fetcher uses.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// KlinesAPI abstracts the Binance client for testing.
type KlinesAPI interface {
	NewKlinesService() KlinesService
}

type realKlinesAPI struct {
	client *binance.Client
}

func (r *realKlinesAPI) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service.Symbol(symbol)
	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service.Interval(interval)
	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service.Limit(limit)
	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceFetcher implements Fetcher using the Binance spot klines endpoint.
type BinanceFetcher struct {
	api KlinesAPI
}

// NewBinanceFetcher creates a fetcher for the public klines endpoint. baseURL
// overrides the API host when non-empty.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	client.HTTPClient = newHTTPClient(proxyURL, timeout)
	return &BinanceFetcher{api: &realKlinesAPI{client: client}}
}

// NewBinanceFetcherWithAPI creates a fetcher around an existing KlinesAPI.
func NewBinanceFetcherWithAPI(api KlinesAPI) *BinanceFetcher {
	return &BinanceFetcher{api: api}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchCandles issues one klines request and returns the candles oldest first.
func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Candle, error) {
	if !interval.IsValid() {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	klines, err := f.api.NewKlinesService().
		Symbol(symbol).
		Interval(interval.String()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}

	candles := make([]model.Candle, 0, len(klines))
	for i, k := range klines {
		if k == nil {
			return nil, fmt.Errorf("kline %d: empty record", i)
		}
		c, err := convertKline(k)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return normalize(candles, limit)
}

func convertKline(k *binance.Kline) (model.Candle, error) {
	raw := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var v [5]float64
	for i, r := range raw {
		f, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("parse %s %q: %w", ohlcvFields[i], r, err)
		}
		v[i] = f
	}
	c := model.Candle{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: v[4],
	}
	if err := validateCandle(c); err != nil {
		return model.Candle{}, err
	}
	return c, nil
}
