package calculator

import (
	"errors"
	"math"
	"time"

	"BRVMSentinel/internal/model"
)

// TradingDaysPerYear is the lookback used for 52-week figures.
const TradingDaysPerYear = 252

// PriceRange scans the most recent lookback points and returns the high and low,
// using the close where a point has no high or low.
func PriceRange(points []model.PricePoint, lookback int) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	n := len(points)
	start := n - lookback
	if start < 0 || lookback <= 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		high = math.Max(high, points[i].HighOrClose())
		low = math.Min(low, points[i].LowOrClose())
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high], clamped to 0.0~1.0.
// A flat range yields 0.5.
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return clamp((current-low)/(high-low), 0, 1), nil
}

// Summarize computes the headline figures of a series.
func Summarize(points []model.PricePoint) model.Summary {
	s := model.Summary{Points: len(points)}
	if len(points) == 0 {
		return s
	}
	last := points[len(points)-1]
	s.LastPrice = last.Close
	if len(points) > 1 {
		if prev := points[len(points)-2].Close; prev != 0 {
			s.VariationPct = model.Float((last.Close - prev) / prev * 100)
		}
	}
	cutoff := last.Date.Add(-365 * 24 * time.Hour)
	lookback := 0
	for i := len(points) - 1; i >= 0 && !points[i].Date.Before(cutoff); i-- {
		lookback++
	}
	if lookback > TradingDaysPerYear {
		lookback = TradingDaysPerYear
	}
	s.High52w, s.Low52w, _ = PriceRange(points, lookback)
	s.Position52w, _ = RangePosition(last.Close, s.High52w, s.Low52w)
	return s
}

// rollingExtremes returns, for each index with a full window, the highest high
// and the lowest low over the trailing period.
func rollingExtremes(highs, lows []float64, period int) (hh, ll []float64) {
	hh = undefined(len(highs))
	ll = undefined(len(lows))
	if period <= 0 || len(highs) < period || len(lows) != len(highs) {
		return hh, ll
	}
	for i := period - 1; i < len(highs); i++ {
		hi := math.Inf(-1)
		lo := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		hh[i] = hi
		ll[i] = lo
	}
	return hh, ll
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
