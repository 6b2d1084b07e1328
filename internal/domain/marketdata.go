package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a last price for one market ticker as reported by a quote source.
// Currency is the provider-reported denomination and may be a minor unit
// (e.g. "GBp") or empty when the provider omits it.
type Quote struct {
	LastPrice decimal.Decimal
	Currency  string
}

// CoinListing is one entry of a crypto provider's coin catalogue.
type CoinListing struct {
	ID     string
	Symbol string
	Name   string
}

// QuoteSource provides last prices for market tickers
// (equities, FX pairs, metal spot and futures tickers)
type QuoteSource interface {
	// Quote returns the last price for a ticker, preferring a real-time
	// quote over the most recent daily close. Fails with ErrQuoteUnavailable
	// when neither is present.
	Quote(ctx context.Context, ticker string) (Quote, error)
}

// CryptoSource provides the crypto coin catalogue and spot prices
type CryptoSource interface {
	// ListCoins fetches the full coin catalogue
	ListCoins(ctx context.Context) ([]CoinListing, error)

	// SimplePrice fetches prices for coin ids against one quote currency;
	// the result maps id -> lower-case currency -> price
	SimplePrice(ctx context.Context, ids []string, vsCurrency string) (map[string]map[string]float64, error)
}
