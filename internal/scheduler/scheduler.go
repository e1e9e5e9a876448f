package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/notifier"
	"BRVMSentinel/internal/recorder"
	"BRVMSentinel/internal/strategy"
)

// DefaultConcurrency bounds the number of symbols analysed at once during a scan.
const DefaultConcurrency = 4

// PurgeCron is the schedule of the expired cache entry purge.
const PurgeCron = "0 */10 * * * *"

// ErrScanRunning is returned when a watchlist scan is requested while another is in progress.
var ErrScanRunning = errors.New("scan already running")

// Sender delivers a Telegram message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Notifier    Sender
	Recorder    recorder.Recorder
	Watchlist   []string
	Concurrency int
	Ctx         context.Context

	scanMu sync.Mutex
}

// ScanReport is the outcome of one watchlist scan.
type ScanReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []notifier.DigestEntry
}

// Failures counts the symbols that could not be analysed.
func (r *ScanReport) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.Err != nil {
			n++
		}
	}
	return n
}

// NewScheduler creates a new Scheduler. A nil sender disables notifications.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, rec recorder.Recorder, watchlist []string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Notifier:    sender,
		Recorder:    rec,
		Watchlist:   watchlist,
		Concurrency: DefaultConcurrency,
		Ctx:         ctx,
	}
}

// RegisterAll registers the watchlist scan and the cache purge.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if scanCron != "" {
		if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
			return fmt.Errorf("register scan task: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(PurgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scanTask() {
	report, err := s.RunScanNow(s.Ctx)
	if err != nil {
		log.Warn().Err(err).Msg("scheduled scan skipped")
		return
	}
	if len(report.Entries) > 0 {
		s.trySend(s.Ctx, notifier.FormatDigest(report.RunID, report.Entries))
	}
}

func (s *Scheduler) purgeTask() {
	if s.Collector.Cache == nil {
		return
	}
	if n := s.Collector.Cache.PurgeExpired(); n > 0 {
		log.Debug().Int("purged", n).Msg("expired datasets purged")
	}
}

// RunScanNow analyses every watchlist symbol, records the results under a new
// run id and announces level changes. Only one scan runs at a time; a concurrent
// call returns ErrScanRunning.
func (s *Scheduler) RunScanNow(ctx context.Context) (*ScanReport, error) {
	if !s.scanMu.TryLock() {
		return nil, ErrScanRunning
	}
	defer s.scanMu.Unlock()

	report := &ScanReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Entries:   make([]notifier.DigestEntry, len(s.Watchlist)),
	}
	log.Info().Str("run", report.RunID).Int("symbols", len(s.Watchlist)).Msg("watchlist scan started")

	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, symbol := range s.Watchlist {
		g.Go(func() error {
			report.Entries[i] = s.scanSymbol(ctx, report.RunID, symbol)
			return nil
		})
	}
	_ = g.Wait()
	report.FinishedAt = time.Now()

	for _, e := range report.Entries {
		if e.Err != nil || e.Previous == "" || e.Previous == levelOf(e) {
			continue
		}
		s.trySend(ctx, notifier.FormatLevelChange(e.Analysis, e.Previous))
	}

	if err := s.Recorder.RecordScanRun(&recorder.ScanRun{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Symbols:    len(report.Entries),
		Failures:   report.Failures(),
	}); err != nil {
		log.Error().Err(err).Msg("record scan run")
	}
	log.Info().Str("run", report.RunID).Int("failures", report.Failures()).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).Msg("watchlist scan finished")
	return report, nil
}

func (s *Scheduler) scanSymbol(ctx context.Context, runID, symbol string) notifier.DigestEntry {
	symbol = collector.NormalizeSymbol(symbol)
	entry := notifier.DigestEntry{Symbol: symbol}

	a, err := s.Collector.Analyze(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("scan analysis failed")
		entry.Err = err
		return entry
	}
	entry.Analysis = a

	prev, ok, err := s.Recorder.LastLevel(symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("read last level")
	} else if ok {
		entry.Previous = prev
	}
	if err := s.Recorder.RecordRecommendation(recorder.NewRecommendationRecord(runID, a)); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("record recommendation")
	}
	return entry
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Telegram appends the bot name in group chats: /reco@SentinelBot.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/reco":
		if len(fields) < 2 {
			return "Usage: /reco SYMBOL"
		}
		symbol := collector.NormalizeSymbol(fields[1])
		if !collector.ValidSymbol(symbol) {
			return "Invalid symbol: " + html.EscapeString(symbol)
		}
		a, err := s.Collector.Analyze(ctx, symbol)
		switch {
		case errors.Is(err, strategy.ErrDataUnavailable), errors.Is(err, collector.ErrNoData):
			return fmt.Sprintf("No usable data for %s", symbol)
		case err != nil:
			log.Error().Err(err).Str("symbol", symbol).Msg("command analysis failed")
			return fmt.Sprintf("❌ %s: data source unavailable", symbol)
		}
		return notifier.FormatRecommendation(a)
	case "/scan":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty"
		}
		report, err := s.RunScanNow(ctx)
		if err != nil {
			return "Scan already running, try again later"
		}
		return notifier.FormatDigest(report.RunID, report.Entries)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

func levelOf(e notifier.DigestEntry) model.Level {
	if e.Analysis == nil || e.Analysis.Recommendation == nil {
		return ""
	}
	return e.Analysis.Recommendation.Level
}
