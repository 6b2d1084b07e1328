package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

type currencyPair struct {
	Base  string
	Quote string
}

// fxTickers maps directly quoted currency pairs to their market tickers.
// USD/GBP/EUR are mutually quoted so a triangulation leg never needs a
// second hop.
var fxTickers = map[currencyPair]string{
	{"USD", "GBP"}: "USDGBP=X",
	{"GBP", "USD"}: "GBPUSD=X",
	{"EUR", "GBP"}: "EURGBP=X",
	{"GBP", "EUR"}: "GBPEUR=X",
	{"USD", "EUR"}: "USDEUR=X",
	{"EUR", "USD"}: "EURUSD=X",
	{"CHF", "USD"}: "CHFUSD=X",
	{"USD", "CHF"}: "USDCHF=X",
	{"JPY", "USD"}: "JPYUSD=X",
	{"USD", "JPY"}: "USDJPY=X",
	{"AUD", "USD"}: "AUDUSD=X",
	{"USD", "AUD"}: "USDAUD=X",
	{"CAD", "USD"}: "CADUSD=X",
	{"USD", "CAD"}: "USDCAD=X",
}

// FXResolver converts amounts between currencies using direct market quotes
// or a single-intermediate triangulation.
type FXResolver struct {
	Quotes domain.QuoteSource
}

// NewFXResolver creates a new FXResolver instance
func NewFXResolver(quotes domain.QuoteSource) *FXResolver {
	return &FXResolver{Quotes: quotes}
}

// Rate returns the rate base->quote: 1 unit of base = Rate units of quote.
// Identity pairs resolve to 1 without any network call. Pairs without a
// direct ticker are triangulated through one intermediate currency; when no
// path resolves the error wraps domain.ErrRateUnavailable.
func (r *FXResolver) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))

	if base == quote {
		return decimal.NewFromInt(1), nil
	}

	if ticker, ok := fxTickers[currencyPair{base, quote}]; ok {
		q, err := r.Quotes.Quote(ctx, ticker)
		if err != nil {
			return decimal.Zero, fmt.Errorf("fx %s/%s: %w", base, quote, err)
		}
		return q.LastPrice, nil
	}

	// One-hop triangulation. Prefer USD; when an endpoint is USD prefer EUR,
	// and when an endpoint is EUR prefer GBP.
	via := "USD"
	if base == "USD" || quote == "USD" {
		via = "EUR"
		if base == "EUR" || quote == "EUR" {
			via = "GBP"
		}
	}

	left, err := r.directRate(ctx, base, via)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: no path %s->%s via %s: %v", domain.ErrRateUnavailable, base, quote, via, err)
	}
	right, err := r.directRate(ctx, via, quote)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: no path %s->%s via %s: %v", domain.ErrRateUnavailable, base, quote, via, err)
	}

	return left.Mul(right), nil
}

// directRate resolves a triangulation leg; a leg must be an identity or a
// directly quoted pair, never another triangulation.
func (r *FXResolver) directRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if base == quote {
		return decimal.NewFromInt(1), nil
	}

	ticker, ok := fxTickers[currencyPair{base, quote}]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no direct quote for %s/%s", domain.ErrRateUnavailable, base, quote)
	}

	q, err := r.Quotes.Quote(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}
	return q.LastPrice, nil
}
