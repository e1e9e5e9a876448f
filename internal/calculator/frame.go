package calculator

import (
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/series"
)

// Default indicator windows.
const (
	BollingerPeriod     = 20
	BollingerMultiplier = 2.0
	MACDFast            = 12
	MACDSlow            = 26
	MACDSignalPeriod    = 9
	RSIPeriod           = 14
	StochPeriod         = 14
	StochSignalPeriod   = 3
)

// ComputeIndicators computes every indicator over the series and returns one
// frame per input point.
func ComputeIndicators(points []model.PricePoint) []model.IndicatorFrame {
	closes := series.Closes(points)
	highs := series.Highs(points)
	lows := series.Lows(points)

	sma5 := SMA(closes, 5)
	sma10 := SMA(closes, 10)
	sma20 := SMA(closes, 20)
	sma50 := SMA(closes, 50)
	bands := Bollinger(closes, BollingerPeriod, BollingerMultiplier)
	macd := MACD(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	rsi := RSI(closes, RSIPeriod)
	stoch := Stochastic(closes, highs, lows, StochPeriod, StochSignalPeriod)

	frames := make([]model.IndicatorFrame, len(points))
	for i, p := range points {
		frames[i] = model.IndicatorFrame{
			Date:           p.Date,
			Close:          p.Close,
			SMA5:           Ptr(sma5[i]),
			SMA10:          Ptr(sma10[i]),
			SMA20:          Ptr(sma20[i]),
			SMA50:          Ptr(sma50[i]),
			BollingerMid:   Ptr(bands.Mid[i]),
			BollingerUpper: Ptr(bands.Upper[i]),
			BollingerLower: Ptr(bands.Lower[i]),
			MACD:           Ptr(macd.MACD[i]),
			MACDSignal:     Ptr(macd.Signal[i]),
			MACDHistogram:  Ptr(macd.Histogram[i]),
			RSI:            Ptr(rsi[i]),
			StochK:         Ptr(stoch.K[i]),
			StochD:         Ptr(stoch.D[i]),
		}
	}
	return frames
}
