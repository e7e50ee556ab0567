package model

import (
	"fmt"
	"time"
)

// Interval is a candle width accepted by the exchange kline endpoint.
type Interval string

const (
	Interval1Min   Interval = "1m"
	Interval3Min   Interval = "3m"
	Interval5Min   Interval = "5m"
	Interval15Min  Interval = "15m"
	Interval30Min  Interval = "30m"
	Interval1Hour  Interval = "1h"
	Interval2Hour  Interval = "2h"
	Interval4Hour  Interval = "4h"
	Interval6Hour  Interval = "6h"
	Interval8Hour  Interval = "8h"
	Interval12Hour Interval = "12h"
	Interval1Day   Interval = "1d"
	Interval3Day   Interval = "3d"
	Interval1Week  Interval = "1w"
	Interval1Month Interval = "1M"
)

var intervalDurations = map[Interval]time.Duration{
	Interval1Min:   time.Minute,
	Interval3Min:   3 * time.Minute,
	Interval5Min:   5 * time.Minute,
	Interval15Min:  15 * time.Minute,
	Interval30Min:  30 * time.Minute,
	Interval1Hour:  time.Hour,
	Interval2Hour:  2 * time.Hour,
	Interval4Hour:  4 * time.Hour,
	Interval6Hour:  6 * time.Hour,
	Interval8Hour:  8 * time.Hour,
	Interval12Hour: 12 * time.Hour,
	Interval1Day:   24 * time.Hour,
	Interval3Day:   72 * time.Hour,
	Interval1Week:  7 * 24 * time.Hour,
	Interval1Month: 30 * 24 * time.Hour, // calendar months vary; used only for mock data spacing
}

// IsValid reports whether the interval is one the exchange accepts.
func (i Interval) IsValid() bool {
	_, ok := intervalDurations[i]
	return ok
}

// Duration returns the nominal width of one candle, or 0 for an unknown interval.
func (i Interval) Duration() time.Duration {
	return intervalDurations[i]
}

func (i Interval) String() string { return string(i) }

// ParseInterval validates s and returns it as an Interval.
func ParseInterval(s string) (Interval, error) {
	i := Interval(s)
	if !i.IsValid() {
		return "", fmt.Errorf("invalid interval: %q", s)
	}
	return i, nil
}
