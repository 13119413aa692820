package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents an OKX public market-data API client.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a new OKX client.
func NewClient(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiResponse is the common OKX v5 response envelope.
type apiResponse struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Data []json.RawMessage `json:"data"`
}

// Ticker represents one OKX market ticker. Numeric fields arrive as strings.
type Ticker struct {
	InstID    string `json:"instId"`
	Last      string `json:"last"`
	Open24h   string `json:"open24h"`
	VolCcy24h string `json:"volCcy24h"`
}

// LastPrice parses the last traded price.
func (t Ticker) LastPrice() float64 {
	f, _ := strconv.ParseFloat(t.Last, 64)
	return f
}

// ChangePercent derives the 24h percent change from the 24h open.
func (t Ticker) ChangePercent() float64 {
	last := t.LastPrice()
	open, _ := strconv.ParseFloat(t.Open24h, 64)
	if open <= 0 {
		return 0
	}
	return (last - open) / open * 100
}

// QuoteVolume parses the 24h quote-currency volume.
func (t Ticker) QuoteVolume() float64 {
	f, _ := strconv.ParseFloat(t.VolCcy24h, 64)
	return f
}

// GetTickers fetches all spot tickers.
func (c *Client) GetTickers(ctx context.Context) ([]Ticker, error) {
	data, err := c.get(ctx, "/api/v5/market/tickers", url.Values{"instType": {"SPOT"}})
	if err != nil {
		return nil, err
	}

	tickers := make([]Ticker, 0, len(data))
	for _, raw := range data {
		var t Ticker
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers, nil
}

// GetTicker fetches the ticker for a single instrument, e.g. "BTC-USDT".
func (c *Client) GetTicker(ctx context.Context, instID string) (*Ticker, error) {
	data, err := c.get(ctx, "/api/v5/market/ticker", url.Values{"instId": {instID}})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("okx: no ticker data for %s", instID)
	}

	var t Ticker
	if err := json.Unmarshal(data[0], &t); err != nil {
		return nil, fmt.Errorf("failed to parse ticker: %w", err)
	}
	return &t, nil
}

// get performs a public GET request and unwraps the OKX response envelope.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]json.RawMessage, error) {
	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Code != "0" {
		return nil, fmt.Errorf("okx API error: %s (code %s)", result.Msg, result.Code)
	}
	return result.Data, nil
}
