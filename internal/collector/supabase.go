package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"BRVMSentinel/internal/series"
)

// SupabaseConfig describes where price and ratio rows live in the hosted database.
type SupabaseConfig struct {
	URL               string
	APIKey            string
	PricesTable       string
	FundamentalsTable string
	SymbolColumn      string
	DateColumn        string
	ReportDateColumn  string
	Proxy             string
}

// SupabaseFetcher implements Fetcher over the PostgREST interface of a Supabase project.
type SupabaseFetcher struct {
	cfg    SupabaseConfig
	client *resty.Client
}

// NewSupabaseFetcher creates a fetcher with optional proxy support.
func NewSupabaseFetcher(cfg SupabaseConfig) *SupabaseFetcher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetTimeout(30*time.Second).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)
	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
	}
	return &SupabaseFetcher{cfg: cfg, client: client}
}

func (f *SupabaseFetcher) Name() string { return "supabase" }

func (f *SupabaseFetcher) FetchPriceHistory(ctx context.Context, symbol string, limit int) ([]series.RawRow, error) {
	params := map[string]string{
		"select":           "*",
		f.cfg.SymbolColumn: "eq." + symbol,
		"order":            f.cfg.DateColumn + ".desc",
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	return f.query(ctx, f.cfg.PricesTable, params)
}

func (f *SupabaseFetcher) FetchFundamentals(ctx context.Context, symbol string) ([]series.RawRow, error) {
	return f.query(ctx, f.cfg.FundamentalsTable, map[string]string{
		"select":           "*",
		f.cfg.SymbolColumn: "eq." + symbol,
		"order":            f.cfg.ReportDateColumn + ".desc",
		"limit":            "4",
	})
}

func (f *SupabaseFetcher) query(ctx context.Context, table string, params map[string]string) ([]series.RawRow, error) {
	var rows []series.RawRow
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&rows).
		Get("/" + table)
	if err != nil {
		return nil, fmt.Errorf("supabase %s: %w", table, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("supabase %s: status %d, body: %s", table, resp.StatusCode(), resp.String())
	}
	return rows, nil
}
