package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"BRVMSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API can read history while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT,
			symbol      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			as_of       INTEGER,
			price       REAL,
			rsi         REAL,
			macd        REAL,
			macd_signal REAL,
			ma20        REAL,
			ma50        REAL,
			sentiment   TEXT,
			score       INTEGER NOT NULL,
			level       TEXT NOT NULL,
			label       TEXT,
			reasons     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reco_symbol_ts ON recommendations(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			symbols     INTEGER,
			failures    INTEGER,
			note        TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRecommendation(rec *RecommendationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err = r.db.Exec(`INSERT INTO recommendations
		(run_id, symbol, timestamp, as_of, price, rsi, macd, macd_signal, ma20, ma50,
		 sentiment, score, level, label, reasons)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.Symbol, recordedAt.UnixNano(), rec.AsOf.Unix(),
		nullFloat(rec.Price), nullFloat(rec.RSI), nullFloat(rec.MACD),
		nullFloat(rec.MACDSignal), nullFloat(rec.MA20), nullFloat(rec.MA50),
		rec.Sentiment, rec.Score, string(rec.Level), rec.Label, string(reasons),
	)
	return err
}

func (r *SQLiteRecorder) RecordScanRun(run *ScanRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scan_runs
		(id, started_at, finished_at, symbols, failures, note)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Symbols, run.Failures, run.Note,
	)
	return err
}

func (r *SQLiteRecorder) LastLevel(symbol string) (model.Level, bool, error) {
	var level string
	err := r.db.QueryRow(`SELECT level FROM recommendations
		WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, symbol).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query last level: %w", err)
	}
	return model.Level(level), true, nil
}

func (r *SQLiteRecorder) History(symbol string, limit int) ([]RecommendationRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`SELECT run_id, symbol, timestamp, as_of, price, rsi, macd, macd_signal,
			ma20, ma50, sentiment, score, level, label, reasons
		FROM recommendations WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []RecommendationRecord
	for rows.Next() {
		var (
			rec                                   RecommendationRecord
			runID, sentiment, label, reasons      sql.NullString
			level                                 string
			ts, asOf                              int64
			price, rsi, macd, macdSig, ma20, ma50 sql.NullFloat64
		)
		if err := rows.Scan(&runID, &rec.Symbol, &ts, &asOf, &price, &rsi, &macd, &macdSig,
			&ma20, &ma50, &sentiment, &rec.Score, &level, &label, &reasons); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.RunID = runID.String
		rec.RecordedAt = time.Unix(0, ts)
		rec.AsOf = time.Unix(asOf, 0).UTC()
		rec.Price = nullable(price)
		rec.RSI = nullable(rsi)
		rec.MACD = nullable(macd)
		rec.MACDSignal = nullable(macdSig)
		rec.MA20 = nullable(ma20)
		rec.MA50 = nullable(ma50)
		rec.Sentiment = sentiment.String
		rec.Level = model.Level(level)
		rec.Label = label.String
		if reasons.Valid && reasons.String != "" {
			if err := json.Unmarshal([]byte(reasons.String), &rec.Reasons); err != nil {
				return nil, fmt.Errorf("decode reasons: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
