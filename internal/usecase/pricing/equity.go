package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// EquityAdapter resolves equity prices with minor-unit normalization and
// native-currency detection.
type EquityAdapter struct {
	Quotes domain.QuoteSource
	FX     *FXResolver
}

// NewEquityAdapter creates a new EquityAdapter instance
func NewEquityAdapter(quotes domain.QuoteSource, fx *FXResolver) *EquityAdapter {
	return &EquityAdapter{Quotes: quotes, FX: fx}
}

// isPence reports whether a currency spelling denotes pence-denominated GBP.
// "GBp" must be matched before upper-casing: upper-cased it collides with
// major-unit "GBP".
func isPence(currency string) bool {
	if currency == "GBp" {
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "GBX", "GBP (PENCE)", "GBP (GBX)", "GBP/GBX", "GBP GBX", "GBP(GBX)":
		return true
	}
	return false
}

// FetchSpot resolves an equity price in the target currency.
//
// The native currency comes from the provider quote, then the caller hint.
// Pence-denominated prices are divided by 100 and reclassified as GBP. A
// still-unknown native currency is guessed from the ticker: London listings
// (".L" suffix) default to GBP, everything else to USD.
func (a *EquityAdapter) FetchSpot(ctx context.Context, ref, targetCurrency, nativeHint string) (SpotPrice, error) {
	targetCurrency = strings.ToUpper(strings.TrimSpace(targetCurrency))

	q, err := a.Quotes.Quote(ctx, ref)
	if err != nil {
		return SpotPrice{}, err
	}

	native := q.Currency
	if strings.TrimSpace(native) == "" {
		native = nativeHint
	}

	price := q.LastPrice
	if isPence(native) {
		price = price.Div(hundred)
		native = "GBP"
	}

	native = strings.ToUpper(strings.TrimSpace(native))
	if native == "" {
		if strings.HasSuffix(strings.ToUpper(ref), ".L") {
			native = "GBP"
		} else {
			native = "USD"
		}
	}

	if native != targetCurrency {
		rate, err := a.FX.Rate(ctx, native, targetCurrency)
		if err != nil {
			return SpotPrice{}, fmt.Errorf("failed to convert %s from %s: %w", ref, native, err)
		}
		return SpotPrice{
			Price:  price.Mul(rate),
			Source: fmt.Sprintf("yfinance(%s)+fx(%s->%s)", ref, native, targetCurrency),
		}, nil
	}

	return SpotPrice{Price: price, Source: fmt.Sprintf("yfinance(%s)", ref)}, nil
}
