package model

import "time"

// IndicatorFrame holds every computed indicator for one point of the input series.
// A nil field means the indicator has not warmed up yet at that index.
type IndicatorFrame struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`

	SMA5  *float64 `json:"sma5"`
	SMA10 *float64 `json:"sma10"`
	SMA20 *float64 `json:"sma20"`
	SMA50 *float64 `json:"sma50"`

	BollingerMid   *float64 `json:"bollinger_mid"`
	BollingerUpper *float64 `json:"bollinger_upper"`
	BollingerLower *float64 `json:"bollinger_lower"`

	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`

	RSI    *float64 `json:"rsi"`
	StochK *float64 `json:"stoch_k"`
	StochD *float64 `json:"stoch_d"`
}

// TechnicalSnapshot is the latest technical state of an instrument, as consumed by
// the signal interpreter and the recommendation scorer.
type TechnicalSnapshot struct {
	Price          *float64 `json:"price"`
	RSI            *float64 `json:"rsi"`
	MACD           *float64 `json:"macd"`
	MACDSignal     *float64 `json:"macd_signal"`
	MA20           *float64 `json:"ma20"`
	MA50           *float64 `json:"ma50"`
	BollingerUpper *float64 `json:"bollinger_upper"`
	BollingerLower *float64 `json:"bollinger_lower"`
	StochK         *float64 `json:"stoch_k"`
}

// Scorable reports whether the snapshot holds an input the recommendation scorer
// reads: RSI, a MACD/signal pair, or price with MA20. Bands, %K and a signal line
// without its MACD do not count.
func (t *TechnicalSnapshot) Scorable() bool {
	if t == nil {
		return false
	}
	return t.RSI != nil ||
		(t.MACD != nil && t.MACDSignal != nil) ||
		(t.Price != nil && t.MA20 != nil)
}

// SnapshotOf extracts the technical snapshot from a frame.
func SnapshotOf(f IndicatorFrame) *TechnicalSnapshot {
	return &TechnicalSnapshot{
		Price:          Float(f.Close),
		RSI:            f.RSI,
		MACD:           f.MACD,
		MACDSignal:     f.MACDSignal,
		MA20:           f.SMA20,
		MA50:           f.SMA50,
		BollingerUpper: f.BollingerUpper,
		BollingerLower: f.BollingerLower,
		StochK:         f.StochK,
	}
}

// LatestSnapshot returns the snapshot of the last frame, or nil for an empty series.
func LatestSnapshot(frames []IndicatorFrame) *TechnicalSnapshot {
	if len(frames) == 0 {
		return nil
	}
	return SnapshotOf(frames[len(frames)-1])
}
