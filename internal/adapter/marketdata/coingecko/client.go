package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/httpx"
	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// DefaultBaseURL is the public CoinGecko v3 API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

type coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Client talks to the CoinGecko REST API.
type Client struct {
	BaseURL string
	client  *httpx.Client
}

// New creates a CoinGecko client. An empty baseURL selects the public API.
func New(baseURL string, hc *httpx.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), client: hc}
}

// ListCoins fetches the full coin catalogue (id, symbol, name per coin).
func (c *Client) ListCoins(ctx context.Context) ([]domain.CoinListing, error) {
	var coins []coin
	if err := c.getJSON(ctx, c.BaseURL+"/coins/list", &coins); err != nil {
		return nil, fmt.Errorf("failed to list coins: %w", err)
	}

	out := make([]domain.CoinListing, 0, len(coins))
	for _, co := range coins {
		out = append(out, domain.CoinListing{ID: co.ID, Symbol: co.Symbol, Name: co.Name})
	}
	return out, nil
}

// SimplePrice fetches prices for the given coin ids against one quote
// currency. The response maps id -> currency (lower-case) -> price.
func (c *Client) SimplePrice(ctx context.Context, ids []string, vsCurrency string) (map[string]map[string]float64, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.ToLower(vsCurrency))

	var out map[string]map[string]float64
	if err := c.getJSON(ctx, c.BaseURL+"/simple/price?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch simple price: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return fmt.Errorf("GET %s -> %d: %s", addr, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(data); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
