package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// metalTickers describes how to build the fallback chain for one metal code.
type metalTickers struct {
	// FuturesProxy is a USD-denominated futures ticker used as the last
	// resort (e.g. COMEX front-month silver).
	FuturesProxy string
}

// metals maps supported metal codes to their ticker scheme. Spot tickers are
// derived from the code itself (XAGGBP=X, XAGUSD=X, ...).
var metals = map[string]metalTickers{
	"XAG": {FuturesProxy: "SI=F"},
}

// MetalAdapter resolves metal spot prices with a per-metal fallback chain.
type MetalAdapter struct {
	Quotes domain.QuoteSource
	FX     *FXResolver
}

// NewMetalAdapter creates a new MetalAdapter instance
func NewMetalAdapter(quotes domain.QuoteSource, fx *FXResolver) *MetalAdapter {
	return &MetalAdapter{Quotes: quotes, FX: fx}
}

// FetchSpot resolves a metal price in the target currency.
//
// An explicit ref that is not a metal code is quoted directly first and
// converted from the hinted native currency (assumed USD when absent). When
// that yields nothing, or when ref is empty or a plain metal code, the chain
// runs: direct <code><CCY>=X ticker, then the USD spot ticker plus FX, then
// the futures proxy plus FX. Only when all steps fail does the call fail,
// with domain.ErrPriceUnavailable.
func (a *MetalAdapter) FetchSpot(ctx context.Context, ref, targetCurrency, nativeHint string) (SpotPrice, error) {
	targetCurrency = strings.ToUpper(strings.TrimSpace(targetCurrency))
	code := strings.ToUpper(strings.TrimSpace(ref))

	if _, known := metals[code]; !known && code != "" {
		if sp, err := a.quoteExplicit(ctx, ref, targetCurrency, nativeHint); err == nil {
			return sp, nil
		}
		// Explicit ref yielded nothing; fall back to the default chain.
		code = ""
	}
	if code == "" {
		code = "XAG"
	}

	// 1) Direct metal/target ticker
	direct := fmt.Sprintf("%s%s=X", code, targetCurrency)
	if q, err := a.Quotes.Quote(ctx, direct); err == nil {
		return SpotPrice{Price: q.LastPrice, Source: fmt.Sprintf("yfinance(%s)", direct)}, nil
	}

	// 2) USD spot ticker, FX-converted
	usdSpot := code + "USD=X"
	if q, err := a.Quotes.Quote(ctx, usdSpot); err == nil {
		rate, err := a.FX.Rate(ctx, "USD", targetCurrency)
		if err != nil {
			return SpotPrice{}, fmt.Errorf("%w: %s priced in USD only: %v", domain.ErrPriceUnavailable, code, err)
		}
		return SpotPrice{Price: q.LastPrice.Mul(rate), Source: fmt.Sprintf("yfinance(%s)+fx", usdSpot)}, nil
	}

	// 3) Futures proxy, FX-converted
	if proxy := metals[code].FuturesProxy; proxy != "" {
		if q, err := a.Quotes.Quote(ctx, proxy); err == nil {
			rate, err := a.FX.Rate(ctx, "USD", targetCurrency)
			if err != nil {
				return SpotPrice{}, fmt.Errorf("%w: %s priced in USD only: %v", domain.ErrPriceUnavailable, code, err)
			}
			return SpotPrice{Price: q.LastPrice.Mul(rate), Source: fmt.Sprintf("yfinance(%s)+fx", proxy)}, nil
		}
	}

	return SpotPrice{}, fmt.Errorf("%w: all sources exhausted for %s/%s", domain.ErrPriceUnavailable, code, targetCurrency)
}

func (a *MetalAdapter) quoteExplicit(ctx context.Context, ticker, targetCurrency, nativeHint string) (SpotPrice, error) {
	q, err := a.Quotes.Quote(ctx, ticker)
	if err != nil {
		return SpotPrice{}, err
	}

	native := strings.ToUpper(strings.TrimSpace(nativeHint))
	if native == "" {
		native = "USD"
	}

	if native != targetCurrency {
		rate, err := a.FX.Rate(ctx, native, targetCurrency)
		if err != nil {
			return SpotPrice{}, err
		}
		return SpotPrice{
			Price:  q.LastPrice.Mul(rate),
			Source: fmt.Sprintf("yfinance(%s)+fx(%s->%s)", ticker, native, targetCurrency),
		}, nil
	}

	return SpotPrice{Price: q.LastPrice, Source: fmt.Sprintf("yfinance(%s)", ticker)}, nil
}
