package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"BRVMSentinel/internal/model"
)

var levelIcons = map[model.Level]string{
	model.LevelStrongBuy:  "🟢🟢",
	model.LevelBuy:        "🟢",
	model.LevelHold:       "⚪",
	model.LevelSell:       "🔴",
	model.LevelStrongSell: "🔴🔴",
}

func num(v *float64, format string) string {
	if v == nil {
		return "N/D"
	}
	return fmt.Sprintf(format, *v)
}

// FormatRecommendation formats one analysis into a Telegram message.
func FormatRecommendation(a *model.Analysis) string {
	var b strings.Builder

	date := a.AsOf
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), date.Format("2006-01-02")))

	s := a.Summary
	if s.Points > 0 {
		b.WriteString(fmt.Sprintf("Price: %.2f", s.LastPrice))
		if s.VariationPct != nil {
			b.WriteString(fmt.Sprintf(" (%+.2f%%)", *s.VariationPct))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("52w range: %.2f - %.2f (position %.0f%%)\n\n",
			s.Low52w, s.High52w, s.Position52w*100))
	}

	if t := a.Technical; t != nil {
		b.WriteString("📈 <b>Indicators:</b>\n")
		b.WriteString(fmt.Sprintf("  RSI: %s | %s\n", num(t.RSI, "%.2f"), a.Signals.RSI.Label))
		b.WriteString(fmt.Sprintf("  MACD: %s / %s | %s\n",
			num(t.MACD, "%.2f"), num(t.MACDSignal, "%.2f"), a.Signals.MACD.Label))
		b.WriteString(fmt.Sprintf("  MA20: %s | MA50: %s | %s\n",
			num(t.MA20, "%.2f"), num(t.MA50, "%.2f"), a.Signals.MA.Label))
		b.WriteString(fmt.Sprintf("  Bollinger: %s\n", a.Signals.Bollinger.Label))
		b.WriteString(fmt.Sprintf("  Stochastic: %s\n", a.Signals.Stochastic.Label))
		b.WriteString(fmt.Sprintf("  Sentiment: <b>%s</b>\n\n", a.Signals.OverallSentiment.Label))
	}

	if f := a.Fundamental; f != nil {
		b.WriteString("🏦 <b>Fundamentals:</b>\n")
		b.WriteString(fmt.Sprintf("  PER: %s | PBR: %s\n", num(f.PER, "%.2f"), num(f.PBR, "%.2f")))
		b.WriteString(fmt.Sprintf("  ROE: %s | Dividend: %s\n\n", num(f.ROE, "%.2f%%"), num(f.DividendYield, "%.2f%%")))
	}

	if r := a.Recommendation; r != nil {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> (score %+d/%d)\n",
			levelIcons[r.Level], html.EscapeString(r.Recommendation), r.Score, r.MaxScore))
		for _, reason := range r.Reasons {
			b.WriteString("  • " + html.EscapeString(reason) + "\n")
		}
	}
	return b.String()
}

// FormatLevelChange announces that a symbol moved to a new recommendation level.
func FormatLevelChange(a *model.Analysis, previous model.Level) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>%s</b>: %s → %s\n\n",
		html.EscapeString(a.Symbol), levelName(previous), levelName(a.Recommendation.Level)))
	b.WriteString(FormatRecommendation(a))
	return b.String()
}

// DigestEntry is one line of a scan digest.
type DigestEntry struct {
	Symbol   string
	Analysis *model.Analysis
	Previous model.Level
	Err      error
}

// FormatDigest renders the result of a watchlist scan as a monospace table.
func FormatDigest(runID string, entries []DigestEntry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Symbol", "Price", "RSI", "Score", "Level"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	failures := 0
	for _, e := range entries {
		if e.Err != nil || e.Analysis == nil || e.Analysis.Recommendation == nil {
			failures++
			tw.AppendRow(table.Row{e.Symbol, "-", "-", "-", "error"})
			continue
		}
		a := e.Analysis
		var price, rsi *float64
		if a.Technical != nil {
			price, rsi = a.Technical.Price, a.Technical.RSI
		}
		level := string(a.Recommendation.Level)
		if e.Previous != "" && e.Previous != a.Recommendation.Level {
			level += " *"
		}
		tw.AppendRow(table.Row{
			e.Symbol,
			num(price, "%.2f"),
			num(rsi, "%.1f"),
			fmt.Sprintf("%+d", a.Recommendation.Score),
			level,
		})
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>Watchlist scan</b> | %s\n", time.Now().Format("2006-01-02 15:04")))
	if runID != "" {
		b.WriteString(fmt.Sprintf("run <code>%s</code>\n", html.EscapeString(runID)))
	}
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(tw.Render()))
	b.WriteString("</pre>\n")
	b.WriteString(fmt.Sprintf("%d symbols, %d failed", len(entries), failures))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n" +
		"/reco SYMBOL - recommendation for one symbol\n" +
		"/scan - scan the watchlist now\n" +
		"/help - this message"
}

func levelName(l model.Level) string {
	if l == "" {
		return "none"
	}
	return strings.ReplaceAll(string(l), "_", " ")
}
