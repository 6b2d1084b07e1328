package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AssetKind classifies what an asset is (not where its price comes from)
type AssetKind string

const (
	AssetKindCrypto AssetKind = "crypto"
	AssetKindEquity AssetKind = "equity"
	AssetKindMetal  AssetKind = "metal"
	AssetKindCash   AssetKind = "cash"
	AssetKindManual AssetKind = "manual"
)

// ProviderName identifies the upstream data source for an asset
type ProviderName string

const (
	ProviderCoinGecko ProviderName = "coingecko"
	ProviderYFinance  ProviderName = "yfinance"
	ProviderManual    ProviderName = "manual"
)

// Asset represents a priceable instrument in the domain layer
// Symbol is the user-facing identifier (e.g. "BTC", "VOD.L", "XAG"),
// ProviderRef is what the provider knows it as (e.g. "bitcoin", "VOD.L").
type Asset struct {
	ID          uuid.UUID
	Symbol      string
	Kind        AssetKind
	Provider    ProviderName
	ProviderRef string
	// NativeCurrency is an optional hint for provider quotes (e.g. "USD", "GBX").
	// When empty, adapters infer it with provider-specific heuristics.
	NativeCurrency string
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Symbol) == "" {
		return fmt.Errorf("%w: asset symbol cannot be empty", ErrInvalidRequest)
	}

	switch a.Kind {
	case AssetKindCrypto, AssetKindEquity, AssetKindMetal, AssetKindCash, AssetKindManual:
	default:
		return fmt.Errorf("%w: unknown asset kind %q", ErrInvalidRequest, a.Kind)
	}

	switch a.Provider {
	case ProviderCoinGecko, ProviderYFinance, ProviderManual:
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidRequest, a.Provider)
	}

	// CoinGecko lookups are id-based; an asset without a provider ref can
	// never be priced there
	if a.Provider == ProviderCoinGecko && strings.TrimSpace(a.ProviderRef) == "" {
		return fmt.Errorf("%w: provider ref is required for coingecko assets", ErrInvalidRequest)
	}

	return nil
}

// NormalizedSymbol returns the canonical (upper-case, trimmed) form of the symbol
func (a *Asset) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(a.Symbol))
}
