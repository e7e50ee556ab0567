package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CandleAlert/internal/model"
)

// DefaultKlinesPath is the kline path used by Binance and compatible exchanges.
const DefaultKlinesPath = "/api/v3/klines"

// minKlineFields is open time plus OHLCV; exchanges append close time,
// quote volume, trade count and taker volumes after these.
const minKlineFields = 6

// RESTFetcher implements Fetcher for any exchange that serves Binance-style
// klines as an array of arrays.
type RESTFetcher struct {
	BaseURL string
	Path    string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a fetcher with optional proxy support.
func NewRESTFetcher(baseURL, path, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	if path == "" {
		path = DefaultKlinesPath
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Path:    path,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// FetchCandles issues one GET with symbol, interval and limit query parameters.
func (f *RESTFetcher) FetchCandles(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval.String())
	q.Set("limit", strconv.Itoa(limit))
	endpoint := f.BaseURL + f.Path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch klines: status %d, body: %s", resp.StatusCode, string(body))
	}

	candles, err := ParseKlines(body)
	if err != nil {
		return nil, err
	}
	return normalize(candles, limit)
}

// ParseKlines decodes an array-of-arrays kline payload. Every record needs at
// least open time and OHLCV; numeric fields may be JSON numbers or strings.
func ParseKlines(body []byte) ([]model.Candle, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		if len(row) < minKlineFields {
			return nil, fmt.Errorf("kline %d: expected at least %d fields, got %d", i, minKlineFields, len(row))
		}
		openTime, err := parseMillis(row[0])
		if err != nil {
			return nil, fmt.Errorf("kline %d: open time: %w", i, err)
		}
		var v [5]float64
		for j := 0; j < 5; j++ {
			if v[j], err = parseNumber(row[j+1]); err != nil {
				return nil, fmt.Errorf("kline %d: %s: %w", i, ohlcvFields[j], err)
			}
		}
		c := model.Candle{
			Time:   time.UnixMilli(openTime).UTC(),
			Open:   v[0],
			High:   v[1],
			Low:    v[2],
			Close:  v[3],
			Volume: v[4],
		}
		if err := validateCandle(c); err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseNumber(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("non-numeric value %v", v)
	}
}

func parseMillis(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("non-numeric value %v", v)
	}
}
