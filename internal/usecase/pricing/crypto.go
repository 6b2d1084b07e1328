package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// SpotPrice is a resolved spot price plus the provenance tag describing
// which data source and conversion path produced it.
type SpotPrice struct {
	Price  decimal.Decimal
	Source string
}

// CryptoAdapter resolves crypto prices through the coin catalogue and
// simple-price endpoints.
type CryptoAdapter struct {
	Source domain.CryptoSource
	Index  *IndexCache
}

// NewCryptoAdapter creates a new CryptoAdapter instance
func NewCryptoAdapter(source domain.CryptoSource, index *IndexCache) *CryptoAdapter {
	return &CryptoAdapter{Source: source, Index: index}
}

// FetchSpot resolves ref (a provider id, symbol or human name) to a coin id
// and fetches its price in the target currency.
func (a *CryptoAdapter) FetchSpot(ctx context.Context, ref, targetCurrency, nativeHint string) (SpotPrice, error) {
	id, err := a.resolveID(ctx, ref)
	if err != nil {
		return SpotPrice{}, err
	}

	prices, err := a.Source.SimplePrice(ctx, []string{id}, targetCurrency)
	if err != nil {
		return SpotPrice{}, fmt.Errorf("failed to fetch price for %s: %w", id, err)
	}

	px, ok := prices[id][strings.ToLower(targetCurrency)]
	if !ok {
		return SpotPrice{}, fmt.Errorf("%w: no %s price for %s in response", domain.ErrPriceUnavailable, targetCurrency, id)
	}

	return SpotPrice{
		Price:  decimal.NewFromFloat(px),
		Source: fmt.Sprintf("coingecko(%s->%s)", id, strings.ToUpper(targetCurrency)),
	}, nil
}

// resolveID normalizes user input to a provider id. Input that is already
// lower-case with no internal spaces is taken as a raw id without a lookup;
// anything else goes through the coin index.
func (a *CryptoAdapter) resolveID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == strings.ToLower(ref) && !strings.Contains(ref, " ") {
		return ref, nil
	}
	return a.Index.IDFor(ctx, ref)
}
