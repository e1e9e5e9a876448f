package strategy

import (
	"fmt"

	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/signal"
)

// contribution is one scoring rule that fired.
type contribution struct {
	Points int
	Reason string
}

// technicalFactors evaluates RSI, MACD and moving-average alignment, in that order.
func technicalFactors(t *model.TechnicalSnapshot) []contribution {
	var out []contribution

	if t.RSI != nil {
		rsi := *t.RSI
		switch pts := signal.RSIScore(rsi); pts {
		case 2:
			out = append(out, contribution{pts, fmt.Sprintf("RSI at %.2f indicates oversold", rsi)})
		case 1:
			out = append(out, contribution{pts, fmt.Sprintf("RSI at %.2f is approaching oversold territory", rsi)})
		case -1:
			out = append(out, contribution{pts, fmt.Sprintf("RSI at %.2f is approaching overbought territory", rsi)})
		case -2:
			out = append(out, contribution{pts, fmt.Sprintf("RSI at %.2f indicates overbought", rsi)})
		}
	}

	if t.MACD != nil && t.MACDSignal != nil {
		if *t.MACD > *t.MACDSignal {
			out = append(out, contribution{1, fmt.Sprintf("MACD (%.2f) above signal line (%.2f): bullish momentum", *t.MACD, *t.MACDSignal)})
		} else {
			out = append(out, contribution{-1, fmt.Sprintf("MACD (%.2f) at or below signal line (%.2f): bearish momentum", *t.MACD, *t.MACDSignal)})
		}
	}

	if score, ok := signal.MAAlignment(t.Price, t.MA20, t.MA50); ok {
		price, ma20 := *t.Price, *t.MA20
		switch score {
		case 2:
			out = append(out, contribution{2, fmt.Sprintf("Price %.2f above MA20 %.2f above MA50 %.2f: strong uptrend", price, ma20, *t.MA50)})
		case -2:
			out = append(out, contribution{-2, fmt.Sprintf("Price %.2f below MA20 %.2f below MA50 %.2f: strong downtrend", price, ma20, *t.MA50)})
		case 1:
			out = append(out, contribution{1, fmt.Sprintf("Price %.2f above MA20 %.2f: mixed trend, leaning bullish", price, ma20)})
		case -1:
			out = append(out, contribution{-1, fmt.Sprintf("Price %.2f below MA20 %.2f: mixed trend, leaning bearish", price, ma20)})
		}
	}

	return out
}

// fundamentalFactors evaluates PER, dividend yield, ROE, ROA and PBR, in that order.
// Ratios in percent: a dividend yield of 6 means 6%.
func fundamentalFactors(f *model.FundamentalSnapshot) []contribution {
	var out []contribution

	if f.PER != nil {
		per := *f.PER
		switch {
		case per > 0 && per < 10:
			out = append(out, contribution{2, fmt.Sprintf("PER of %.2f suggests the stock is undervalued", per)})
		case per >= 10 && per < 15:
			out = append(out, contribution{1, fmt.Sprintf("PER of %.2f is reasonable", per)})
		case per > 25:
			out = append(out, contribution{-1, fmt.Sprintf("PER of %.2f suggests the stock is expensive", per)})
		}
	}

	if f.DividendYield != nil {
		dy := *f.DividendYield
		switch {
		case dy > 5:
			out = append(out, contribution{2, fmt.Sprintf("Dividend yield of %.2f%% is attractive", dy)})
		case dy > 3:
			out = append(out, contribution{1, fmt.Sprintf("Dividend yield of %.2f%% is decent", dy)})
		}
	}

	if f.ROE != nil {
		roe := *f.ROE
		switch {
		case roe > 20:
			out = append(out, contribution{2, fmt.Sprintf("ROE of %.2f%% shows excellent profitability", roe)})
		case roe > 15:
			out = append(out, contribution{1, fmt.Sprintf("ROE of %.2f%% shows good profitability", roe)})
		}
	}

	if f.ROA != nil && *f.ROA > 10 {
		out = append(out, contribution{1, fmt.Sprintf("ROA of %.2f%% shows efficient use of assets", *f.ROA)})
	}

	if f.PBR != nil && *f.PBR > 0 && *f.PBR < 1 {
		out = append(out, contribution{1, fmt.Sprintf("PBR of %.2f: trading below book value", *f.PBR)})
	}

	return out
}
