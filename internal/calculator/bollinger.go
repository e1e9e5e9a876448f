package calculator

import "math"

// Bands holds the three Bollinger series.
type Bands struct {
	Mid   []float64
	Upper []float64
	Lower []float64
}

// Bollinger computes Bollinger Bands: the SMA over period, plus and minus
// multiplier times the population standard deviation of the same window.
func Bollinger(values []float64, period int, multiplier float64) Bands {
	mid := SMA(values, period)
	b := Bands{
		Mid:   mid,
		Upper: undefined(len(values)),
		Lower: undefined(len(values)),
	}
	for i, m := range mid {
		if !Defined(m) {
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - m
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		b.Upper[i] = m + multiplier*sd
		b.Lower[i] = m - multiplier*sd
	}
	return b
}
