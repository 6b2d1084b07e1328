package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openportfolio/portfolio-backend/internal/adapter/marketdata/httpx"
	"github.com/openportfolio/portfolio-backend/internal/domain"
)

func TestListCoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/list", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},
			{"id":"ethereum","symbol":"eth","name":"Ethereum"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, httpx.New(5*time.Second))

	coins, err := c.ListCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, domain.CoinListing{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}, coins[0])
}

func TestSimplePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,monero", r.URL.Query().Get("ids"))
		assert.Equal(t, "gbp", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bitcoin":{"gbp":20000.5},"monero":{"gbp":120.25}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, httpx.New(5*time.Second))

	prices, err := c.SimplePrice(context.Background(), []string{"bitcoin", "monero"}, "GBP")
	require.NoError(t, err)
	assert.Equal(t, 20000.5, prices["bitcoin"]["gbp"])
	assert.Equal(t, 120.25, prices["monero"]["gbp"])
}

func TestSimplePrice_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, httpx.New(5*time.Second))

	_, err := c.SimplePrice(context.Background(), []string{"bitcoin"}, "GBP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
