package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BRVMSentinel/internal/model"
)

func openTestDB(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecommendationRoundTrip(t *testing.T) {
	r := openTestDB(t)

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	first := &RecommendationRecord{
		RunID:      "run-1",
		Symbol:     "SNTS",
		RecordedAt: base,
		AsOf:       base.Truncate(24 * time.Hour),
		Price:      model.Float(15500),
		RSI:        model.Float(28.4),
		Score:      4,
		Level:      model.LevelBuy,
		Label:      "Buy",
		Sentiment:  "Haussier",
		Reasons:    []string{"RSI oversold (28.40)"},
	}
	second := &RecommendationRecord{
		RunID:      "run-2",
		Symbol:     "SNTS",
		RecordedAt: base.Add(time.Hour),
		Score:      -6,
		Level:      model.LevelStrongSell,
		Label:      "Strong Sell",
	}
	require.NoError(t, r.RecordRecommendation(first))
	require.NoError(t, r.RecordRecommendation(second))
	require.NoError(t, r.RecordRecommendation(&RecommendationRecord{
		Symbol: "ORAC", RecordedAt: base, Level: model.LevelHold,
	}))

	hist, err := r.History("SNTS", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	assert.Equal(t, "run-2", hist[0].RunID)
	assert.Equal(t, model.LevelStrongSell, hist[0].Level)
	assert.Nil(t, hist[0].Price)
	assert.Empty(t, hist[0].Reasons)

	got := hist[1]
	assert.Equal(t, "run-1", got.RunID)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 15500, *got.Price, 1e-9)
	require.NotNil(t, got.RSI)
	assert.InDelta(t, 28.4, *got.RSI, 1e-9)
	assert.Nil(t, got.MACD)
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, "Haussier", got.Sentiment)
	assert.Equal(t, []string{"RSI oversold (28.40)"}, got.Reasons)
	assert.True(t, got.RecordedAt.Equal(base))

	limited, err := r.History("SNTS", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteRecorder_LastLevel(t *testing.T) {
	r := openTestDB(t)

	_, ok, err := r.LastLevel("SNTS")
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Now()
	require.NoError(t, r.RecordRecommendation(&RecommendationRecord{
		Symbol: "SNTS", RecordedAt: base, Level: model.LevelHold,
	}))
	require.NoError(t, r.RecordRecommendation(&RecommendationRecord{
		Symbol: "SNTS", RecordedAt: base.Add(time.Minute), Level: model.LevelBuy,
	}))

	level, ok, err := r.LastLevel("SNTS")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.LevelBuy, level)
}

func TestSQLiteRecorder_ScanRun(t *testing.T) {
	r := openTestDB(t)
	now := time.Now()
	run := &ScanRun{ID: "abc", StartedAt: now, FinishedAt: now.Add(time.Second), Symbols: 3, Failures: 1}
	require.NoError(t, r.RecordScanRun(run))

	// Run ids are primary keys.
	assert.Error(t, r.RecordScanRun(run))
}

func TestNewRecommendationRecord(t *testing.T) {
	assert.Nil(t, NewRecommendationRecord("x", nil))
	assert.Nil(t, NewRecommendationRecord("x", &model.Analysis{Symbol: "SNTS"}))

	a := &model.Analysis{
		Symbol:    "SNTS",
		Technical: &model.TechnicalSnapshot{Price: model.Float(100), MA20: model.Float(95)},
		Signals: model.Signals{
			OverallSentiment: model.IndicatorSignal{Label: "Neutre", Decision: model.DecisionNeutral},
		},
		Recommendation: &model.Recommendation{
			Recommendation: "Hold", Level: model.LevelHold, Score: 1, MaxScore: 10,
			Reasons: []string{"Price above MA20"},
		},
	}
	rec := NewRecommendationRecord("run", a)
	require.NotNil(t, rec)
	assert.Equal(t, "run", rec.RunID)
	assert.Equal(t, "SNTS", rec.Symbol)
	assert.Equal(t, model.LevelHold, rec.Level)
	assert.Equal(t, "Neutre", rec.Sentiment)
	assert.InDelta(t, 95, *rec.MA20, 1e-9)
	assert.Nil(t, rec.RSI)
}
