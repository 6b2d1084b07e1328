package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// SpotResolver is the single entry point for spot price resolution: it
// dispatches an asset description to the right provider adapter and returns
// a normalized price plus its provenance tag. It performs no retries;
// retry/backoff policy belongs to the caller.
type SpotResolver struct {
	Crypto *CryptoAdapter
	Metal  *MetalAdapter
	Equity *EquityAdapter
}

// NewSpotResolver wires the provider adapters over the two outbound sources
func NewSpotResolver(crypto domain.CryptoSource, quotes domain.QuoteSource) *SpotResolver {
	fx := NewFXResolver(quotes)
	return &SpotResolver{
		Crypto: NewCryptoAdapter(crypto, NewIndexCache(crypto)),
		Metal:  NewMetalAdapter(quotes, fx),
		Equity: NewEquityAdapter(quotes, fx),
	}
}

// ResolveSpot dispatches by provider (and kind, for market-data assets):
//   - coingecko -> crypto adapter; requires a non-empty provider ref
//   - yfinance + metal kind -> metal adapter
//   - yfinance (any other kind) -> equity adapter, ref as ticker
//   - manual -> ErrManualNotImplemented
//   - anything else -> ErrUnsupportedProvider
func (r *SpotResolver) ResolveSpot(ctx context.Context, kind domain.AssetKind, provider domain.ProviderName, providerRef, targetCurrency, nativeHint string) (SpotPrice, error) {
	targetCurrency = strings.ToUpper(strings.TrimSpace(targetCurrency))

	switch provider {
	case domain.ProviderCoinGecko:
		if strings.TrimSpace(providerRef) == "" {
			return SpotPrice{}, fmt.Errorf("%w: coingecko requires a provider ref (e.g. \"ethereum\")", domain.ErrInvalidRequest)
		}
		return r.Crypto.FetchSpot(ctx, providerRef, targetCurrency, nativeHint)

	case domain.ProviderYFinance:
		if kind == domain.AssetKindMetal {
			return r.Metal.FetchSpot(ctx, providerRef, targetCurrency, nativeHint)
		}
		return r.Equity.FetchSpot(ctx, providerRef, targetCurrency, nativeHint)

	case domain.ProviderManual:
		return SpotPrice{}, fmt.Errorf("%w: manual prices are supplied through a separate write path", domain.ErrManualNotImplemented)

	default:
		return SpotPrice{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}
}

// ResolveAsset resolves a stored asset, tagging any failure with its symbol
// for caller-side logging.
func (r *SpotResolver) ResolveAsset(ctx context.Context, asset *domain.Asset, targetCurrency string) (SpotPrice, error) {
	sp, err := r.ResolveSpot(ctx, asset.Kind, asset.Provider, asset.ProviderRef, targetCurrency, asset.NativeCurrency)
	if err != nil {
		return SpotPrice{}, fmt.Errorf("%s: %w", asset.Symbol, err)
	}
	return sp, nil
}
