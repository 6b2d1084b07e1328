package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/httpx"
	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// DefaultBaseURL is the public Yahoo Finance chart API root.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client talks to the Yahoo Finance chart API.
type Client struct {
	BaseURL string
	client  *httpx.Client
}

// New creates a Yahoo Finance client. An empty baseURL selects the public API.
func New(baseURL string, hc *httpx.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), client: hc}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the last price for a ticker from a one-day chart window.
// The real-time market price from the chart meta is preferred; when absent,
// the most recent non-null daily close is used. If neither is present the
// call fails with domain.ErrQuoteUnavailable.
func (c *Client) Quote(ctx context.Context, ticker string) (domain.Quote, error) {
	q := url.Values{}
	q.Set("range", "1d")
	q.Set("interval", "1d")
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return domain.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return domain.Quote{}, fmt.Errorf("GET %s -> %d: %s", addr, resp.StatusCode, string(b))
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Quote{}, fmt.Errorf("decode: %w", err)
	}

	if body.Chart.Error != nil {
		return domain.Quote{}, fmt.Errorf("%w: %s: %s", domain.ErrQuoteUnavailable, ticker, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("%w: %s: empty chart result", domain.ErrQuoteUnavailable, ticker)
	}

	result := body.Chart.Result[0]

	if p := result.Meta.RegularMarketPrice; p != nil {
		return domain.Quote{LastPrice: decimal.NewFromFloat(*p), Currency: result.Meta.Currency}, nil
	}

	// Fall back to the most recent daily close in the window
	for _, series := range result.Indicators.Quote {
		for i := len(series.Close) - 1; i >= 0; i-- {
			if series.Close[i] != nil {
				return domain.Quote{LastPrice: decimal.NewFromFloat(*series.Close[i]), Currency: result.Meta.Currency}, nil
			}
		}
	}

	return domain.Quote{}, fmt.Errorf("%w: %s: no market price or daily close", domain.ErrQuoteUnavailable, ticker)
}
