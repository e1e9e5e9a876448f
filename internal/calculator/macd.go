package calculator

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow), a signal EMA over it and their difference.
//
// The signal EMA is fed the MACD line with undefined positions replaced by zero,
// so the signal line exists from index signal-1 and starts biased toward zero.
// Dashboards built on these values depend on that seeding.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)

	line := undefined(len(values))
	seeded := make([]float64, len(values))
	for i := range values {
		if Defined(emaFast[i]) && Defined(emaSlow[i]) {
			line[i] = emaFast[i] - emaSlow[i]
			seeded[i] = line[i]
		}
	}

	sig := EMA(seeded, signal)
	hist := undefined(len(values))
	for i := range values {
		if Defined(line[i]) && Defined(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return MACDResult{MACD: line, Signal: sig, Histogram: hist}
}
