package collector

import (
	"context"
	"sync/atomic"
	"time"

	"BRVMSentinel/internal/series"
)

// Fetcher defines the interface for fetching raw market rows for one instrument.
type Fetcher interface {
	// FetchPriceHistory returns up to limit of the most recent price rows, in any order.
	FetchPriceHistory(ctx context.Context, symbol string, limit int) ([]series.RawRow, error)
	// FetchFundamentals returns the published ratio rows, in any order. No rows is not an error.
	FetchFundamentals(ctx context.Context, symbol string) ([]series.RawRow, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price           float64
	PriceRows       []series.RawRow
	FundamentalRows []series.RawRow
	Err             error

	priceCalls atomic.Int32
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(_ context.Context, _ string, limit int) ([]series.RawRow, error) {
	m.priceCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.PriceRows != nil {
		return m.PriceRows, nil
	}
	return generateMockRows(m.Price, limit), nil
}

func (m *MockFetcher) FetchFundamentals(_ context.Context, _ string) ([]series.RawRow, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.FundamentalRows, nil
}

// PriceCalls reports how many times price history was requested.
func (m *MockFetcher) PriceCalls() int { return int(m.priceCalls.Load()) }

func generateMockRows(basePrice float64, count int) []series.RawRow {
	rows := make([]series.RawRow, count)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		rows[i] = series.RawRow{
			"date":   start.AddDate(0, 0, i+1).Format("2006-01-02"),
			"close":  p,
			"high":   p * 1.005,
			"low":    p * 0.995,
			"volume": 1000.0,
		}
	}
	return rows
}
