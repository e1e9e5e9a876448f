package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BRVMSentinel/internal/cache"
	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/recorder"
	"BRVMSentinel/internal/series"
)

func newTestServer(t *testing.T, f collector.Fetcher, rec recorder.Recorder) (*Server, *collector.Collector) {
	t.Helper()
	col := collector.NewCollector(f, 120, cache.New[collector.Dataset](8, time.Minute))
	s, err := NewServer(Config{Collector: col, Recorder: rec})
	require.NoError(t, err)
	return s, col
}

func do(t *testing.T, s *Server, method, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestNewServer_RequiresCollector(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockFetcher{Price: 100}, nil)
	code, body := do(t, s, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["source"])
	assert.EqualValues(t, 0, body["cached_symbols"])
}

func TestIndicators(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockFetcher{Price: 15000}, nil)

	code, body := do(t, s, http.MethodGet, "/api/stocks/snts/indicators?limit=5")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SNTS", body["symbol"])
	assert.EqualValues(t, 5, body["count"])

	frames := body["indicators"].([]any)
	require.Len(t, frames, 5)
	last := frames[4].(map[string]any)
	assert.Contains(t, last, "sma20")
	assert.NotNil(t, last["rsi"])

	code, _ = do(t, s, http.MethodGet, "/api/stocks/snts/indicators?limit=abc")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodGet, "/api/stocks/snts/indicators?limit=0")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestIndicators_NoData(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockFetcher{PriceRows: []series.RawRow{}}, nil)
	code, body := do(t, s, http.MethodGet, "/api/stocks/SNTS/indicators")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "insufficient data", body["error"])
}

func TestSignals(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockFetcher{Price: 15000}, nil)
	code, body := do(t, s, http.MethodGet, "/api/stocks/SNTS/signals")
	require.Equal(t, http.StatusOK, code)

	signals := body["signals"].(map[string]any)
	for _, k := range []string{"rsi_signal", "macd_signal", "ma_signal", "bollinger_signal", "stochastic_signal", "overall_sentiment"} {
		assert.Contains(t, signals, k)
	}
	assert.NotNil(t, body["latest"])
}

func TestRecommendation(t *testing.T) {
	f := &collector.MockFetcher{
		Price: 15000,
		FundamentalRows: []series.RawRow{
			{"report_date": "2025-12-31", "per": 8.0, "dividend_yield": 7.5},
		},
	}
	s, _ := newTestServer(t, f, nil)

	code, body := do(t, s, http.MethodGet, "/api/stocks/SNTS/recommendation")
	require.Equal(t, http.StatusOK, code)
	reco := body["recommendation"].(map[string]any)
	assert.Contains(t, reco, "recommendation_level")
	assert.EqualValues(t, 10, reco["max_score"])
	assert.NotEmpty(t, reco["reasons"])
	assert.Contains(t, body, "summary")

	// Served from cache on the second call.
	do(t, s, http.MethodGet, "/api/stocks/SNTS/recommendation")
	assert.Equal(t, 1, f.PriceCalls())
}

func TestRecommendation_Errors(t *testing.T) {
	s, _ := newTestServer(t, &collector.MockFetcher{PriceRows: []series.RawRow{}}, nil)
	code, body := do(t, s, http.MethodGet, "/api/stocks/SNTS/recommendation")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]any{"error": "insufficient data"}, body)

	s, _ = newTestServer(t, &collector.MockFetcher{Err: errors.New("connection refused")}, nil)
	code, body = do(t, s, http.MethodGet, "/api/stocks/SNTS/recommendation")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "data source unavailable", body["error"])

	code, _ = do(t, s, http.MethodGet, "/api/stocks/not%20a%20symbol/recommendation")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHistory(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	for i, lvl := range []model.Level{model.LevelHold, model.LevelBuy, model.LevelStrongBuy} {
		require.NoError(t, rec.RecordRecommendation(&recorder.RecommendationRecord{
			Symbol:     "SNTS",
			RecordedAt: time.Now().Add(time.Duration(i) * time.Minute),
			Level:      lvl,
			Score:      i * 3,
		}))
	}
	s, _ := newTestServer(t, &collector.MockFetcher{Price: 100}, rec)

	code, body := do(t, s, http.MethodGet, "/api/stocks/snts/history?limit=2")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])
	first := body["history"].([]any)[0].(map[string]any)
	assert.Equal(t, "strong_buy", first["recommendation_level"])

	code, body = do(t, s, http.MethodGet, "/api/stocks/ORAC/history")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["history"])
}

func TestInvalidateCache(t *testing.T) {
	f := &collector.MockFetcher{Price: 100}
	s, col := newTestServer(t, f, nil)

	_, err := col.Load(t.Context(), "SNTS")
	require.NoError(t, err)

	code, body := do(t, s, http.MethodDelete, "/api/cache/snts")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["invalidated"])

	code, body = do(t, s, http.MethodDelete, "/api/cache/snts")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["invalidated"])

	do(t, s, http.MethodGet, "/api/stocks/SNTS/signals")
	assert.Equal(t, 2, f.PriceCalls())
}
