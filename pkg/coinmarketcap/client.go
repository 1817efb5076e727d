// Package coinmarketcap pulls coin metadata from the CoinMarketCap API.
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cryptodwh/internal/snapshot"

	"github.com/cenkalti/backoff/v4"
)

type Client struct {
	baseURL    string
	apiKey     string
	maxRetries uint64
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries uint64) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type infoResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]coinInfo `json:"data"`
}

type coinInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	URLs        struct {
		Website []string `json:"website"`
		Reddit  []string `json:"reddit"`
	} `json:"urls"`
}

// Profile fetches the descriptive metadata of one coin by CoinMarketCap id.
// HTTP 429 responses are retried with exponential backoff up to the configured
// retry budget; every other failure is surfaced immediately.
func (c *Client) Profile(ctx context.Context, id string) (*snapshot.ProfileRow, error) {
	var row *snapshot.ProfileRow

	operation := func() error {
		r, err := c.fetchProfile(ctx, id)
		if err != nil {
			return err
		}
		row = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *Client) fetchProfile(ctx context.Context, id string) (*snapshot.ProfileRow, error) {
	endpoint := fmt.Sprintf("%s/v1/cryptocurrency/info?id=%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("coinmarketcap rate limited for id %s", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, backoff.Permanent(fmt.Errorf("coinmarketcap error: %s", body))
	}

	var parsed infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}

	info, ok := parsed.Data[id]
	if !ok {
		return nil, backoff.Permanent(fmt.Errorf("no data for coin id %s", id))
	}

	row := &snapshot.ProfileRow{
		Symbol:      info.Symbol,
		SourceID:    info.ID,
		Name:        info.Name,
		Category:    info.Category,
		Description: info.Description,
		Logo:        info.Logo,
	}
	if len(info.URLs.Website) > 0 {
		row.Website = info.URLs.Website[0]
	}
	if len(info.URLs.Reddit) > 0 {
		row.Reddit = info.URLs.Reddit[0]
	}
	return row, nil
}
