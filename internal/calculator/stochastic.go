package calculator

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes the stochastic oscillator. %K is the position of the close
// within the trailing high-low range, scaled to 0~100 (50 on a flat range);
// %D is the SMA of %K over signal.
func Stochastic(closes, highs, lows []float64, period, signal int) StochasticResult {
	k := undefined(len(closes))
	if len(highs) == len(closes) && len(lows) == len(closes) {
		hh, ll := rollingExtremes(highs, lows, period)
		for i := range closes {
			if !Defined(hh[i]) {
				continue
			}
			if hh[i] == ll[i] {
				k[i] = 50
				continue
			}
			k[i] = clamp((closes[i]-ll[i])/(hh[i]-ll[i])*100, 0, 100)
		}
	}
	return StochasticResult{K: k, D: SMA(k, signal)}
}
