package model

import "time"

// Decision is the discrete reading of one indicator family.
type Decision string

const (
	DecisionBuy     Decision = "Buy"
	DecisionSell    Decision = "Sell"
	DecisionNeutral Decision = "Neutral"
)

// IndicatorSignal pairs a decision with the label shown in the dashboard.
type IndicatorSignal struct {
	Label    string   `json:"label"`
	Decision Decision `json:"decision"`
}

// Signals is the interpreted view of a technical snapshot.
type Signals struct {
	RSI              IndicatorSignal `json:"rsi_signal"`
	MACD             IndicatorSignal `json:"macd_signal"`
	MA               IndicatorSignal `json:"ma_signal"`
	Bollinger        IndicatorSignal `json:"bollinger_signal"`
	Stochastic       IndicatorSignal `json:"stochastic_signal"`
	OverallSentiment IndicatorSignal `json:"overall_sentiment"`
}

// Level is the five-step recommendation scale.
type Level string

const (
	LevelStrongBuy  Level = "strong_buy"
	LevelBuy        Level = "buy"
	LevelHold       Level = "hold"
	LevelSell       Level = "sell"
	LevelStrongSell Level = "strong_sell"
)

// Recommendation is the scored verdict for one instrument.
type Recommendation struct {
	Recommendation string   `json:"recommendation"`
	Level          Level    `json:"recommendation_level"`
	Score          int      `json:"score"`
	MaxScore       int      `json:"max_score"`
	Reasons        []string `json:"reasons"`
}

// Analysis is the full output of the pipeline for one symbol.
type Analysis struct {
	Symbol         string               `json:"symbol"`
	AsOf           time.Time            `json:"as_of"`
	Summary        Summary              `json:"summary"`
	Latest         *IndicatorFrame      `json:"latest,omitempty"`
	Frames         []IndicatorFrame     `json:"-"`
	Technical      *TechnicalSnapshot   `json:"technical,omitempty"`
	Fundamental    *FundamentalSnapshot `json:"fundamental,omitempty"`
	Signals        Signals              `json:"signals"`
	Recommendation *Recommendation      `json:"recommendation,omitempty"`
}

// Summary carries the headline figures of a price series.
type Summary struct {
	LastPrice    float64  `json:"last_price"`
	VariationPct *float64 `json:"variation_pct,omitempty"`
	High52w      float64  `json:"high_52w"`
	Low52w       float64  `json:"low_52w"`
	Position52w  float64  `json:"position_52w"` // 0.0 ~ 1.0
	Points       int      `json:"points"`
}
