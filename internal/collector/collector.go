package collector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"BRVMSentinel/internal/cache"
	"BRVMSentinel/internal/calculator"
	"BRVMSentinel/internal/model"
	"BRVMSentinel/internal/series"
	"BRVMSentinel/internal/signal"
	"BRVMSentinel/internal/strategy"
)

// DefaultHistory is the number of daily rows requested per instrument.
const DefaultHistory = 300

// ErrNoData is returned when an instrument has no usable price row.
var ErrNoData = errors.New("no price data")

// Dataset is the normalized input of the indicator pipeline for one instrument.
type Dataset struct {
	Points      []model.PricePoint
	Fundamental *model.FundamentalSnapshot
	FetchedAt   time.Time
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	History int
	Cache   *cache.Cache[Dataset]
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, history int, c *cache.Cache[Dataset]) *Collector {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Collector{Fetcher: fetcher, History: history, Cache: c}
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,16}$`)

// ValidSymbol reports whether a normalized ticker is well formed.
func ValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Load returns the dataset for symbol, fetching prices and fundamentals in parallel
// on a cache miss.
func (c *Collector) Load(ctx context.Context, symbol string) (Dataset, error) {
	symbol = NormalizeSymbol(symbol)
	if c.Cache != nil {
		if ds, ok := c.Cache.Get(symbol); ok {
			log.Debug().Str("symbol", symbol).Msg("dataset served from cache")
			return ds, nil
		}
	}

	var priceRows, fundRows []series.RawRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.Fetcher.FetchPriceHistory(gctx, symbol, c.History)
		if err != nil {
			return fmt.Errorf("fetch price history: %w", err)
		}
		priceRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := c.Fetcher.FetchFundamentals(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetch fundamentals: %w", err)
		}
		fundRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dataset{}, fmt.Errorf("%s via %s: %w", symbol, c.Fetcher.Name(), err)
	}

	ds := Dataset{
		Points:      series.NormalizePrices(priceRows),
		Fundamental: series.LatestFundamental(fundRows),
		FetchedAt:   time.Now(),
	}
	if dropped := len(priceRows) - len(ds.Points); dropped > 0 {
		log.Warn().Str("symbol", symbol).Int("dropped", dropped).Msg("price rows without usable date or close")
	}
	log.Info().Str("symbol", symbol).Int("points", len(ds.Points)).
		Bool("fundamentals", ds.Fundamental != nil).Msg("dataset loaded")

	if c.Cache != nil {
		c.Cache.Set(symbol, ds)
	}
	return ds, nil
}

// Invalidate drops the cached dataset of symbol.
func (c *Collector) Invalidate(symbol string) bool {
	if c.Cache == nil {
		return false
	}
	return c.Cache.Invalidate(NormalizeSymbol(symbol))
}

// Indicators loads symbol and computes its indicator frames.
func (c *Collector) Indicators(ctx context.Context, symbol string) ([]model.IndicatorFrame, error) {
	ds, err := c.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(ds.Points) == 0 {
		return nil, fmt.Errorf("%s: %w", NormalizeSymbol(symbol), ErrNoData)
	}
	return calculator.ComputeIndicators(ds.Points), nil
}

// Analyze runs the whole pipeline for symbol: indicators, signals and the
// recommendation. It fails with strategy.ErrDataUnavailable when nothing can be scored.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	ds, err := c.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return Analyze(NormalizeSymbol(symbol), ds)
}

// Analyze computes the analysis of an already loaded dataset.
func Analyze(symbol string, ds Dataset) (*model.Analysis, error) {
	frames := calculator.ComputeIndicators(ds.Points)
	tech := model.LatestSnapshot(frames)

	rec, err := strategy.Score(tech, ds.Fundamental)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	a := &model.Analysis{
		Symbol:         symbol,
		Summary:        calculator.Summarize(ds.Points),
		Frames:         frames,
		Technical:      tech,
		Fundamental:    ds.Fundamental,
		Signals:        signal.Interpret(tech),
		Recommendation: &rec,
	}
	if len(frames) > 0 {
		last := frames[len(frames)-1]
		a.Latest = &last
		a.AsOf = last.Date
	} else if ds.Fundamental != nil {
		a.AsOf = ds.Fundamental.ReportDate
	}
	return a, nil
}
