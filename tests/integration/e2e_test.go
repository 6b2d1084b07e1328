//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openportfolio/portfolio-backend/internal/adapter/repository/postgres"
	"github.com/openportfolio/portfolio-backend/internal/domain"
)

var (
	db       *postgres.DB
	baseURL  string
	apiToken string
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Connect to Database
	dbConnStr := getDBConnectionString()
	var err error
	db, err = postgres.NewDB(dbConnStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	// 2. Point at the running API server
	baseURL = getAPIBaseURL()
	apiToken = os.Getenv("API_TOKEN")
	if apiToken == "" {
		apiToken = "dev-token"
	}

	code := m.Run()

	os.Exit(code)
}

// getDBConnectionString returns the database connection string from environment or defaults
func getDBConnectionString() string {
	connStr := os.Getenv("DB_CONN_STR")
	if connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "portfolio"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// getAPIBaseURL returns the API server address from environment or defaults
func getAPIBaseURL() string {
	if addr := os.Getenv("API_BASE_URL"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}

func apiRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// uniqueSymbol returns a symbol unlikely to collide across test runs
func uniqueSymbol(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1000000)
}

func TestHealthz(t *testing.T) {
	resp, err := http.Get(baseURL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRejected(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/assets", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "not-the-token")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssetAndHoldingLifecycle(t *testing.T) {
	symbol := uniqueSymbol("ITG")

	// Create an asset over the API
	createResp := apiRequest(t, http.MethodPost, "/api/assets", map[string]string{
		"symbol":       symbol,
		"kind":         "equity",
		"provider":     "yfinance",
		"provider_ref": symbol,
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var asset struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
	}
	decodeBody(t, createResp, &asset)
	assert.Equal(t, symbol, asset.Symbol)

	// Duplicate symbol is rejected
	dupResp := apiRequest(t, http.MethodPost, "/api/assets", map[string]string{
		"symbol":       symbol,
		"kind":         "equity",
		"provider":     "yfinance",
		"provider_ref": symbol,
	})
	defer dupResp.Body.Close()
	assert.Equal(t, http.StatusConflict, dupResp.StatusCode)

	// Create a holding against it
	holdResp := apiRequest(t, http.MethodPost, "/api/holdings", map[string]string{
		"account":  "IntegrationTest",
		"asset_id": asset.ID,
		"quantity": "2.5",
	})
	require.Equal(t, http.StatusCreated, holdResp.StatusCode)

	var holding struct {
		ID       string `json:"id"`
		Account  string `json:"account"`
		Quantity string `json:"quantity"`
	}
	decodeBody(t, holdResp, &holding)
	assert.Equal(t, "IntegrationTest", holding.Account)
	assert.Equal(t, "2.5", holding.Quantity)

	// Holding shows up in the account-scoped listing
	listResp := apiRequest(t, http.MethodGet, "/api/holdings?account=IntegrationTest", nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var holdings []struct {
		ID string `json:"id"`
	}
	decodeBody(t, listResp, &holdings)
	found := false
	for _, h := range holdings {
		if h.ID == holding.ID {
			found = true
		}
	}
	assert.True(t, found, "created holding should appear in account listing")

	// Delete it again
	delResp := apiRequest(t, http.MethodDelete, "/api/holdings/"+holding.ID, nil)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	// Deleting twice yields not found
	delAgain := apiRequest(t, http.MethodDelete, "/api/holdings/"+holding.ID, nil)
	defer delAgain.Body.Close()
	assert.Equal(t, http.StatusNotFound, delAgain.StatusCode)
}

func TestStoredPriceFlowsIntoOverview(t *testing.T) {
	ctx := context.Background()
	symbol := uniqueSymbol("PRC")

	assetRepo := postgres.NewAssetRepository(db)
	holdingRepo := postgres.NewHoldingRepository(db)
	priceRepo := postgres.NewPriceRepository(db)

	// Seed an asset, holding and price directly through the repositories
	asset := &domain.Asset{
		ID:          uuid.New(),
		Symbol:      symbol,
		Kind:        domain.AssetKindEquity,
		Provider:    domain.ProviderYFinance,
		ProviderRef: symbol,
	}
	require.NoError(t, assetRepo.Create(ctx, asset))

	holding := &domain.Holding{
		ID:       uuid.New(),
		Account:  "OverviewTest",
		AssetID:  asset.ID,
		Quantity: decimal.RequireFromString("4"),
	}
	require.NoError(t, holdingRepo.Create(ctx, holding))

	point := &domain.PricePoint{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		Timestamp:    time.Now().UTC(),
		Price:        decimal.RequireFromString("25"),
		BaseCurrency: "GBP",
		Source:       "yfinance(" + symbol + ")",
	}
	require.NoError(t, priceRepo.Add(ctx, point))

	// The stored price is served by the latest-prices endpoint
	pricesResp := apiRequest(t, http.MethodGet, "/api/prices/latest?base_ccy=GBP", nil)
	require.Equal(t, http.StatusOK, pricesResp.StatusCode)

	var prices []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	decodeBody(t, pricesResp, &prices)
	var got string
	for _, p := range prices {
		if p.Symbol == symbol {
			got = p.Price
		}
	}
	assert.Equal(t, "25", got)

	// And the overview values the holding without calling any provider
	overviewResp := apiRequest(t, http.MethodGet, "/api/overview?base_ccy=GBP&account=OverviewTest", nil)
	require.Equal(t, http.StatusOK, overviewResp.StatusCode)

	var overview struct {
		BaseCurrency string `json:"base_ccy"`
		Total        string `json:"total"`
		Lines        []struct {
			Symbol string `json:"symbol"`
			Value  string `json:"value"`
		} `json:"lines"`
	}
	decodeBody(t, overviewResp, &overview)
	assert.Equal(t, "GBP", overview.BaseCurrency)

	var lineValue string
	for _, line := range overview.Lines {
		if line.Symbol == symbol {
			lineValue = line.Value
		}
	}
	assert.Equal(t, "100", lineValue)

	// Cleanup
	require.NoError(t, holdingRepo.Delete(ctx, holding.ID))
}

func TestLatestPriceIsMostRecent(t *testing.T) {
	ctx := context.Background()
	symbol := uniqueSymbol("LTS")

	assetRepo := postgres.NewAssetRepository(db)
	priceRepo := postgres.NewPriceRepository(db)

	asset := &domain.Asset{
		ID:          uuid.New(),
		Symbol:      symbol,
		Kind:        domain.AssetKindCrypto,
		Provider:    domain.ProviderCoinGecko,
		ProviderRef: "bitcoin",
	}
	require.NoError(t, assetRepo.Create(ctx, asset))

	older := &domain.PricePoint{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		Timestamp:    time.Now().UTC().Add(-time.Hour),
		Price:        decimal.RequireFromString("100"),
		BaseCurrency: "GBP",
		Source:       "coingecko(bitcoin->GBP)",
	}
	newer := &domain.PricePoint{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		Timestamp:    time.Now().UTC(),
		Price:        decimal.RequireFromString("110"),
		BaseCurrency: "GBP",
		Source:       "coingecko(bitcoin->GBP)",
	}
	require.NoError(t, priceRepo.Add(ctx, older))
	require.NoError(t, priceRepo.Add(ctx, newer))

	latest, err := priceRepo.GetLatest(ctx, asset.ID, "GBP")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Price.Equal(decimal.RequireFromString("110")))

	// A different base currency has no recorded price
	missing, err := priceRepo.GetLatest(ctx, asset.ID, "JPY")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
