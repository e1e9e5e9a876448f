package collector

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"BRVMSentinel/internal/series"
)

// RemoteAPIFetcher implements Fetcher using a market data REST API exposing
// /api/v1/stocks/{symbol}/history and /api/v1/stocks/{symbol}/fundamentals.
type RemoteAPIFetcher struct {
	client *resty.Client
}

// NewRemoteAPIFetcher creates a new fetcher with optional proxy support.
func NewRemoteAPIFetcher(baseURL, apiKey, proxyURL string) *RemoteAPIFetcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &RemoteAPIFetcher{client: client}
}

func (f *RemoteAPIFetcher) Name() string { return "remote" }

func (f *RemoteAPIFetcher) FetchPriceHistory(ctx context.Context, symbol string, limit int) ([]series.RawRow, error) {
	req := f.client.R().SetContext(ctx).SetPathParam("symbol", symbol)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	return f.fetchRows(req, "/api/v1/stocks/{symbol}/history")
}

func (f *RemoteAPIFetcher) FetchFundamentals(ctx context.Context, symbol string) ([]series.RawRow, error) {
	req := f.client.R().SetContext(ctx).SetPathParam("symbol", symbol)
	return f.fetchRows(req, "/api/v1/stocks/{symbol}/fundamentals")
}

func (f *RemoteAPIFetcher) fetchRows(req *resty.Request, path string) ([]series.RawRow, error) {
	var rows []series.RawRow
	resp, err := req.SetResult(&rows).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch rows: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return rows, nil
}
