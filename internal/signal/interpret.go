// Package signal maps the latest technical snapshot to per-indicator decisions and
// the labels displayed by the dashboard.
package signal

import "BRVMSentinel/internal/model"

// Dashboard labels.
const (
	LabelOverbought   = "Suracheté"
	LabelOversold     = "Survendu"
	LabelNeutral      = "Neutre"
	LabelBullish      = "Haussier"
	LabelBearish      = "Baissier"
	LabelVeryBullish  = "Très Haussier"
	LabelVeryBearish  = "Très Baissier"
	LabelNotAvailable = "N/D"
)

// Thresholds.
const (
	RSIOversold     = 30.0
	RSIOverbought   = 70.0
	RSISoftBuy      = 40.0
	RSISoftSell     = 60.0
	StochOversold   = 20.0
	StochOverbought = 80.0
)

var unavailable = model.IndicatorSignal{Label: LabelNotAvailable, Decision: model.DecisionNeutral}

// Interpret reads every indicator family of the snapshot. A nil snapshot yields
// all-unavailable signals.
func Interpret(t *model.TechnicalSnapshot) model.Signals {
	if t == nil {
		t = &model.TechnicalSnapshot{}
	}
	s := model.Signals{
		RSI:        RSISignal(t.RSI),
		MACD:       MACDSignal(t.MACD, t.MACDSignal),
		MA:         MASignal(t.Price, t.MA20, t.MA50),
		Bollinger:  BollingerSignal(t.Price, t.BollingerUpper, t.BollingerLower),
		Stochastic: StochasticSignal(t.StochK),
	}
	s.OverallSentiment = Overall(s.RSI, s.MACD, s.MA)
	return s
}

// RSISignal classifies the RSI: oversold is a buy, overbought a sell.
func RSISignal(rsi *float64) model.IndicatorSignal {
	switch {
	case rsi == nil:
		return unavailable
	case *rsi <= RSIOversold:
		return model.IndicatorSignal{Label: LabelOversold, Decision: model.DecisionBuy}
	case *rsi >= RSIOverbought:
		return model.IndicatorSignal{Label: LabelOverbought, Decision: model.DecisionSell}
	default:
		return model.IndicatorSignal{Label: LabelNeutral, Decision: model.DecisionNeutral}
	}
}

// MACDSignal always decides: above the signal line is bullish, otherwise bearish.
func MACDSignal(macd, signal *float64) model.IndicatorSignal {
	if macd == nil || signal == nil {
		return unavailable
	}
	if *macd > *signal {
		return model.IndicatorSignal{Label: LabelBullish, Decision: model.DecisionBuy}
	}
	return model.IndicatorSignal{Label: LabelBearish, Decision: model.DecisionSell}
}

// MAAlignment scores price vs MA20 vs MA50 on -2..+2. ok is false when price or
// MA20 is missing.
func MAAlignment(price, ma20, ma50 *float64) (score int, ok bool) {
	if price == nil || ma20 == nil {
		return 0, false
	}
	p, m20 := *price, *ma20
	switch {
	case ma50 != nil && p > m20 && m20 > *ma50:
		return 2, true
	case ma50 != nil && p < m20 && m20 < *ma50:
		return -2, true
	case p > m20:
		return 1, true
	case p < m20:
		return -1, true
	default:
		return 0, true
	}
}

// MASignal labels the moving-average alignment.
func MASignal(price, ma20, ma50 *float64) model.IndicatorSignal {
	score, ok := MAAlignment(price, ma20, ma50)
	if !ok {
		return unavailable
	}
	return verbal(score)
}

// BollingerSignal: at or above the upper band sells, at or below the lower band buys.
func BollingerSignal(price, upper, lower *float64) model.IndicatorSignal {
	switch {
	case price == nil || upper == nil || lower == nil:
		return unavailable
	case *price >= *upper:
		return model.IndicatorSignal{Label: LabelOverbought, Decision: model.DecisionSell}
	case *price <= *lower:
		return model.IndicatorSignal{Label: LabelOversold, Decision: model.DecisionBuy}
	default:
		return model.IndicatorSignal{Label: LabelNeutral, Decision: model.DecisionNeutral}
	}
}

// StochasticSignal classifies %K.
func StochasticSignal(k *float64) model.IndicatorSignal {
	switch {
	case k == nil:
		return unavailable
	case *k <= StochOversold:
		return model.IndicatorSignal{Label: LabelOversold, Decision: model.DecisionBuy}
	case *k >= StochOverbought:
		return model.IndicatorSignal{Label: LabelOverbought, Decision: model.DecisionSell}
	default:
		return model.IndicatorSignal{Label: LabelNeutral, Decision: model.DecisionNeutral}
	}
}

// Overall nets the bullish and bearish votes of the given signals. Unavailable
// signals do not vote.
func Overall(signals ...model.IndicatorSignal) model.IndicatorSignal {
	net := 0
	for _, s := range signals {
		switch s.Decision {
		case model.DecisionBuy:
			net++
		case model.DecisionSell:
			net--
		}
	}
	return verbal(net)
}

// RSIScore is the soft-band contribution of the RSI to the recommendation score.
func RSIScore(rsi float64) int {
	switch {
	case rsi < RSIOversold:
		return 2
	case rsi < RSISoftBuy:
		return 1
	case rsi > RSIOverbought:
		return -2
	case rsi > RSISoftSell:
		return -1
	default:
		return 0
	}
}

func verbal(score int) model.IndicatorSignal {
	switch {
	case score >= 2:
		return model.IndicatorSignal{Label: LabelVeryBullish, Decision: model.DecisionBuy}
	case score == 1:
		return model.IndicatorSignal{Label: LabelBullish, Decision: model.DecisionBuy}
	case score <= -2:
		return model.IndicatorSignal{Label: LabelVeryBearish, Decision: model.DecisionSell}
	case score == -1:
		return model.IndicatorSignal{Label: LabelBearish, Decision: model.DecisionSell}
	default:
		return model.IndicatorSignal{Label: LabelNeutral, Decision: model.DecisionNeutral}
	}
}
