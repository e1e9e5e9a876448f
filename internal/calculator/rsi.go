package calculator

// RSI computes the Wilder-smoothed relative strength index.
// The first value appears at index period, averaged from the first period changes;
// later averages are smoothed as (avg*(period-1) + current) / period.
//
// When the average loss is zero RS is taken as 100, which gives an RSI of
// 100 - 100/101 rather than 100. Thresholds downstream are tuned on that value.
func RSI(values []float64, period int) []float64 {
	out := undefined(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFrom(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - 100.0/(1.0+rs)
}
