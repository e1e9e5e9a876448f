package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BRVMSentinel/internal/cache"
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/series"
	"BRVMSentinel/internal/strategy"
)

func TestCollector_AnalyzeMockData(t *testing.T) {
	m := &MockFetcher{
		Price: 15000,
		FundamentalRows: []series.RawRow{
			{"per": 8.0, "dividend_yield": 6.0, "roe": 22.0, "report_date": "2024-12-31"},
			{"per": 30.0, "report_date": "2023-12-31"},
		},
	}
	col := NewCollector(m, 120, nil)
	a, err := col.Analyze(context.Background(), " snts ")
	require.NoError(t, err)

	assert.Equal(t, "SNTS", a.Symbol)
	assert.Len(t, a.Frames, 120)
	require.NotNil(t, a.Latest)
	require.NotNil(t, a.Fundamental)
	assert.Equal(t, 8.0, *a.Fundamental.PER)
	require.NotNil(t, a.Recommendation)
	assert.Equal(t, 10, a.Recommendation.MaxScore)
	assert.NotEmpty(t, a.Recommendation.Reasons)
	assert.Equal(t, a.Latest.Date, a.AsOf)
	assert.Equal(t, 120, a.Summary.Points)
}

func TestCollector_UsesCache(t *testing.T) {
	m := &MockFetcher{Price: 1000}
	col := NewCollector(m, 60, cache.New[Dataset](8, time.Minute))

	_, err := col.Indicators(context.Background(), "ORAC")
	require.NoError(t, err)
	_, err = col.Analyze(context.Background(), "orac")
	require.NoError(t, err)
	assert.Equal(t, 1, m.PriceCalls())

	assert.True(t, col.Invalidate("ORAC"))
	_, err = col.Indicators(context.Background(), "ORAC")
	require.NoError(t, err)
	assert.Equal(t, 2, m.PriceCalls())
}

func TestCollector_FetchError(t *testing.T) {
	col := NewCollector(&MockFetcher{Err: errors.New("boom")}, 10, nil)
	_, err := col.Analyze(context.Background(), "SNTS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, errors.Is(err, strategy.ErrDataUnavailable))
}

func TestCollector_NoData(t *testing.T) {
	col := NewCollector(&MockFetcher{PriceRows: []series.RawRow{}}, 10, nil)

	_, err := col.Analyze(context.Background(), "SNTS")
	assert.ErrorIs(t, err, strategy.ErrDataUnavailable)

	_, err = col.Indicators(context.Background(), "SNTS")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyze_ShortHistoryWithoutFundamentals(t *testing.T) {
	for _, n := range []int{8, 10, 14} {
		ds := Dataset{Points: series.NormalizePrices(generateMockRows(1000, n))}
		_, err := Analyze("X", ds)
		assert.ErrorIs(t, err, strategy.ErrDataUnavailable, "%d points", n)
	}

	// RSI(14) is defined from the fifteenth point on.
	a, err := Analyze("X", Dataset{Points: series.NormalizePrices(generateMockRows(1000, 15))})
	require.NoError(t, err)
	require.NotNil(t, a.Technical.RSI)
	assert.NotEmpty(t, a.Recommendation.Reasons)
}

func TestAnalyze_FundamentalOnly(t *testing.T) {
	report := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	a, err := Analyze("BOAB", Dataset{Fundamental: &model.FundamentalSnapshot{
		PER: model.Float(8), DividendYield: model.Float(6), ROE: model.Float(22), ReportDate: report,
	}})
	require.NoError(t, err)
	assert.Equal(t, model.LevelStrongBuy, a.Recommendation.Level)
	assert.Equal(t, report, a.AsOf)
	assert.Nil(t, a.Latest)
}
