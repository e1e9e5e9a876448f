// Package calculator implements the technical indicators computed over a price series.
//
// Every function returns a slice aligned index-for-index with its input. Positions
// where the indicator has not warmed up hold NaN; use Defined to test them. Short
// input never fails, it only yields undefined output.
package calculator

import "math"

// Defined reports whether v holds a computed value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Ptr converts a computed value to an optional one, nil when undefined.
func Ptr(v float64) *float64 {
	if !Defined(v) {
		return nil
	}
	return &v
}

func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the simple moving average over a trailing window.
// out[i] is the mean of values[i-period+1..i], defined for i >= period-1 when the
// whole window is defined.
func SMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	missing := 0
	for i, v := range values {
		// drop the trailing element before adding the new one so that a
		// one-period window reproduces the input exactly
		if i >= period {
			if old := values[i-period]; Defined(old) {
				sum -= old
			} else {
				missing--
			}
		}
		if Defined(v) {
			sum += v
		} else {
			missing++
		}
		if i >= period-1 && missing == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average, seeded with the SMA of the first
// period values at index period-1. Undefined input after the seed propagates.
func EMA(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	k := 2.0 / float64(period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	out[period-1] = ema
	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		out[i] = ema
	}
	return out
}
