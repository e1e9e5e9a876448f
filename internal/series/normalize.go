// Package series turns loosely shaped database or API rows into typed price
// and fundamental records.
package series

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"BRVMSentinel/internal/model"
)

// RawRow is one decoded JSON object as returned by PostgREST or the remote API.
type RawRow map[string]any

// Candidate column names, in resolution order.
var (
	DateFields   = []string{"date", "trade_date", "timestamp", "created_at"}
	CloseFields  = []string{"close", "price", "latest_price", "closing_price", "last_price"}
	HighFields   = []string{"high", "high_price"}
	LowFields    = []string{"low", "low_price"}
	VolumeFields = []string{"volume", "traded_volume", "vol"}

	PERFields        = []string{"per", "pe_ratio"}
	PBRFields        = []string{"pbr", "pb_ratio"}
	ROEFields        = []string{"roe"}
	ROAFields        = []string{"roa"}
	DividendFields   = []string{"dividend_yield", "yield"}
	ReportDateFields = []string{"report_date", "date", "created_at"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// NormalizePrices converts raw rows into price points sorted ascending by date.
// Rows without a usable date or close are dropped. Duplicate dates are kept.
func NormalizePrices(rows []RawRow) []model.PricePoint {
	points := make([]model.PricePoint, 0, len(rows))
	for _, row := range rows {
		date, ok := row.Time(DateFields...)
		if !ok {
			continue
		}
		closePrice := row.Number(CloseFields...)
		if closePrice == nil {
			continue
		}
		points = append(points, model.PricePoint{
			Date:   date,
			Close:  *closePrice,
			High:   row.Number(HighFields...),
			Low:    row.Number(LowFields...),
			Volume: row.Number(VolumeFields...),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// NormalizeFundamentals converts raw rows into snapshots, most recent first.
// Rows without any ratio are dropped.
func NormalizeFundamentals(rows []RawRow) []model.FundamentalSnapshot {
	snaps := make([]model.FundamentalSnapshot, 0, len(rows))
	for _, row := range rows {
		s := model.FundamentalSnapshot{
			PER:           row.Number(PERFields...),
			PBR:           row.Number(PBRFields...),
			ROE:           row.Number(ROEFields...),
			ROA:           row.Number(ROAFields...),
			DividendYield: row.Number(DividendFields...),
		}
		if s.IsEmpty() {
			continue
		}
		s.ReportDate, _ = row.Time(ReportDateFields...)
		snaps = append(snaps, s)
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].ReportDate.After(snaps[j].ReportDate) })
	return snaps
}

// LatestFundamental returns the most recent snapshot, or nil.
func LatestFundamental(rows []RawRow) *model.FundamentalSnapshot {
	snaps := NormalizeFundamentals(rows)
	if len(snaps) == 0 {
		return nil
	}
	return &snaps[0]
}

// Number resolves the first candidate key holding a finite number.
func (r RawRow) Number(keys ...string) *float64 {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return &f
		}
	}
	return nil
}

// Time resolves the first candidate key holding a parseable date.
func (r RawRow) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if t, ok := toTime(v); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := canonicalNumber(n)
		if s == "" {
			return 0, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
		f = d.InexactFloat64()
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// canonicalNumber strips grouping characters from a formatted number and returns
// it with a '.' decimal separator. Spaces group thousands. When both ',' and '.'
// appear, the last one is the decimal separator. Several commas alone group
// thousands; a single comma is a decimal separator, so "15,000" reads as 15.
func canonicalNumber(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, "\u202f", "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), true
		}
	case float64, int, int64, json.Number:
		f, ok := toFloat(t)
		if !ok || f <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(f), 0).UTC(), true
	}
	return time.Time{}, false
}

// Closes extracts the close column.
func Closes(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Highs extracts the high column, falling back to the close when absent.
func Highs(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.HighOrClose()
	}
	return out
}

// Lows extracts the low column, falling back to the close when absent.
func Lows(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.LowOrClose()
	}
	return out
}
