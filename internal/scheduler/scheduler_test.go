package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BRVMSentinel/internal/cache"
	"BRVMSentinel/internal/collector"
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/recorder"
	"BRVMSentinel/internal/series"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type memRecorder struct {
	recorder.NoopRecorder
	mu     sync.Mutex
	levels map[string]model.Level
	recs   []recorder.RecommendationRecord
	runs   []recorder.ScanRun
}

func newMemRecorder() *memRecorder {
	return &memRecorder{levels: map[string]model.Level{}}
}

func (m *memRecorder) RecordRecommendation(rec *recorder.RecommendationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	m.levels[rec.Symbol] = rec.Level
	return nil
}

func (m *memRecorder) RecordScanRun(run *recorder.ScanRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memRecorder) LastLevel(symbol string) (model.Level, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.levels[symbol]
	return l, ok, nil
}

func otherLevel(l model.Level) model.Level {
	if l == model.LevelStrongSell {
		return model.LevelStrongBuy
	}
	return model.LevelStrongSell
}

func newTestScheduler(f collector.Fetcher, rec recorder.Recorder, sender Sender, watchlist ...string) *Scheduler {
	col := collector.NewCollector(f, 120, nil)
	return NewScheduler(context.Background(), col, sender, rec, watchlist)
}

func TestRunScanNow_RecordsAndAnnouncesChanges(t *testing.T) {
	rec := newMemRecorder()
	sender := &fakeSender{}
	s := newTestScheduler(&collector.MockFetcher{Price: 15000}, rec, sender, "snts", "ORAC")

	first, err := s.RunScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 0, first.Failures())
	assert.Equal(t, "SNTS", first.Entries[0].Symbol)
	assert.Empty(t, first.Entries[0].Previous)
	assert.Empty(t, sender.sent, "no previous level means no change to announce")

	require.Len(t, rec.recs, 2)
	assert.Equal(t, first.RunID, rec.recs[0].RunID)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, first.RunID, rec.runs[0].ID)
	assert.Equal(t, 2, rec.runs[0].Symbols)

	actual := rec.levels["SNTS"]
	rec.levels["SNTS"] = otherLevel(actual)

	second, err := s.RunScanNow(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "<b>SNTS</b>")
	assert.Equal(t, actual, rec.levels["SNTS"])
}

func TestRunScanNow_Failures(t *testing.T) {
	rec := newMemRecorder()
	s := newTestScheduler(&collector.MockFetcher{Err: errors.New("timeout")}, rec, nil, "A", "B", "C")
	s.Concurrency = 1

	report, err := s.RunScanNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Failures())
	assert.Empty(t, rec.recs)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, 3, rec.runs[0].Failures)
}

func TestRunScanNow_SingleFlight(t *testing.T) {
	rec := newMemRecorder()
	sender := &fakeSender{}
	s := newTestScheduler(&collector.MockFetcher{Price: 15000}, rec, sender, "SNTS")

	s.scanMu.Lock()
	_, err := s.RunScanNow(context.Background())
	assert.ErrorIs(t, err, ErrScanRunning)
	assert.Equal(t, "Scan already running, try again later", s.HandleCommand(context.Background(), "/scan"))

	s.scanTask()
	assert.Empty(t, sender.sent)
	assert.Empty(t, rec.recs)
	assert.Empty(t, rec.runs)
	s.scanMu.Unlock()

	_, err = s.RunScanNow(context.Background())
	require.NoError(t, err)
	assert.Len(t, rec.runs, 1)
}

func TestScanTask_SendsDigest(t *testing.T) {
	sender := &fakeSender{}
	s := newTestScheduler(&collector.MockFetcher{Price: 500}, nil, sender, "SGBC")

	s.scanTask()
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "<pre>")
	assert.Contains(t, sender.sent[0], "SGBC")
}

func TestPurgeTask(t *testing.T) {
	c := cache.New[collector.Dataset](10, 0)
	col := collector.NewCollector(&collector.MockFetcher{Price: 100}, 60, c)
	s := NewScheduler(context.Background(), col, nil, nil, nil)

	_, err := col.Load(context.Background(), "SNTS")
	require.NoError(t, err)
	s.purgeTask()
	assert.Equal(t, 1, c.Len())

	s.Collector.Cache = nil
	s.purgeTask()
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(&collector.MockFetcher{Price: 100}, nil, nil)
	require.NoError(t, s.RegisterAll("0 0 18 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s = newTestScheduler(&collector.MockFetcher{Price: 100}, nil, nil)
	require.NoError(t, s.RegisterAll(""))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(&collector.MockFetcher{Price: 15000}, nil, nil)

	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/reco SYMBOL")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/scan")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/help")
	assert.Equal(t, "Usage: /reco SYMBOL", s.HandleCommand(ctx, "/reco"))
	assert.Equal(t, "Invalid symbol: &lt;B&gt;&amp;X", s.HandleCommand(ctx, "/reco <b>&x"))
	assert.Contains(t, s.HandleCommand(ctx, "/reco snts"), "<b>SNTS</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/RECO@SentinelBot snts"), "<b>SNTS</b>")
	assert.Equal(t, "Watchlist is empty", s.HandleCommand(ctx, "/scan"))

	s.Watchlist = []string{"SNTS"}
	assert.Contains(t, s.HandleCommand(ctx, "/scan"), "<pre>")
}

func TestHandleCommand_Errors(t *testing.T) {
	ctx := context.Background()

	empty := newTestScheduler(&collector.MockFetcher{PriceRows: []series.RawRow{}}, nil, nil)
	assert.Equal(t, "No usable data for XYZ", empty.HandleCommand(ctx, "/reco xyz"))

	broken := newTestScheduler(&collector.MockFetcher{Err: errors.New("502")}, nil, nil)
	reply := broken.HandleCommand(ctx, "/reco snts")
	assert.True(t, strings.Contains(reply, "data source unavailable"), reply)
}
