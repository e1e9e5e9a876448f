package recorder

import (
	"time"

	"BRVMSentinel/internal/model"
)

// RecommendationRecord is one computed recommendation as persisted.
type RecommendationRecord struct {
	RunID      string      `json:"run_id,omitempty"`
	Symbol     string      `json:"symbol"`
	RecordedAt time.Time   `json:"recorded_at"`
	AsOf       time.Time   `json:"as_of"`
	Price      *float64    `json:"price,omitempty"`
	RSI        *float64    `json:"rsi,omitempty"`
	MACD       *float64    `json:"macd,omitempty"`
	MACDSignal *float64    `json:"macd_signal,omitempty"`
	MA20       *float64    `json:"ma20,omitempty"`
	MA50       *float64    `json:"ma50,omitempty"`
	Sentiment  string      `json:"sentiment"`
	Score      int         `json:"score"`
	Level      model.Level `json:"recommendation_level"`
	Label      string      `json:"recommendation"`
	Reasons    []string    `json:"reasons"`
}

// ScanRun summarises one watchlist scan.
type ScanRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    int
	Failures   int
	Note       string
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRecommendation(rec *RecommendationRecord) error
	RecordScanRun(run *ScanRun) error
	// LastLevel returns the most recently recorded level of symbol; ok is false when none exists.
	LastLevel(symbol string) (level model.Level, ok bool, err error)
	// History returns up to limit records of symbol, newest first.
	History(symbol string, limit int) ([]RecommendationRecord, error)
	Close() error
}

// NewRecommendationRecord flattens an analysis into a record.
// It returns nil when the analysis has no recommendation.
func NewRecommendationRecord(runID string, a *model.Analysis) *RecommendationRecord {
	if a == nil || a.Recommendation == nil {
		return nil
	}
	rec := &RecommendationRecord{
		RunID:      runID,
		Symbol:     a.Symbol,
		RecordedAt: time.Now(),
		AsOf:       a.AsOf,
		Sentiment:  a.Signals.OverallSentiment.Label,
		Score:      a.Recommendation.Score,
		Level:      a.Recommendation.Level,
		Label:      a.Recommendation.Recommendation,
		Reasons:    a.Recommendation.Reasons,
	}
	if t := a.Technical; t != nil {
		rec.Price = t.Price
		rec.RSI = t.RSI
		rec.MACD = t.MACD
		rec.MACDSignal = t.MACDSignal
		rec.MA20 = t.MA20
		rec.MA50 = t.MA50
	}
	return rec
}
