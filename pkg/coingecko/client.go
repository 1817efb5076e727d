// Package coingecko pulls daily OHLC candles from the public CoinGecko API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cryptodwh/internal/snapshot"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// DailyOHLC fetches the OHLC candles of one coin and keeps only the rows that
// fall on the target day (the endpoint always returns a trailing window, so
// today's partial candles are filtered out). No API key is required.
func (c *Client) DailyOHLC(ctx context.Context, coin string, day time.Time) ([]snapshot.PriceRow, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/ohlc?vs_currency=usd&days=1", c.baseURL, url.PathEscape(coin))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko error: %s", body)
	}

	// Each candle is [timestampMillis, open, high, low, close]
	var candles [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	target := day.Format(snapshot.DateLayout)
	var rows []snapshot.PriceRow
	for _, candle := range candles {
		if len(candle) < 5 {
			continue // skip incomplete row
		}
		ts := time.UnixMilli(int64(candle[0])).UTC()
		if ts.Format(snapshot.DateLayout) != target {
			continue
		}
		rows = append(rows, snapshot.PriceRow{
			Date:   target,
			Time:   ts.Format(snapshot.TimeLayout),
			Symbol: coin,
			Open:   candle[1],
			High:   candle[2],
			Low:    candle[3],
			Close:  candle[4],
		})
	}

	return rows, nil
}
