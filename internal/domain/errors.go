package domain

import "errors"

// Pricing failure taxonomy. Resolvers surface these to their caller and never
// retry internally; retry/backoff policy belongs to the poll cycle and the
// valuation service.
var (
	// ErrInvalidRequest flags a malformed asset descriptor (e.g. a crypto
	// asset with no provider ref).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownAsset means an identifier could not be resolved at the provider.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrRateUnavailable means no FX path (direct or triangulated) produced a rate.
	ErrRateUnavailable = errors.New("fx rate unavailable")

	// ErrQuoteUnavailable means a market ticker had neither a fast quote nor
	// a daily close.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrPriceUnavailable means upstream data was missing after exhausting
	// all fallbacks.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrUnsupportedProvider flags a provider value the resolver cannot dispatch.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrManualNotImplemented flags manual assets, whose prices must be
	// supplied through a separate write path, not the resolver.
	ErrManualNotImplemented = errors.New("manual pricing not implemented")
)
