package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint is one observed price for an asset in a base currency.
// Rows are append-only: one per poll attempt, never mutated; the latest
// timestamp per (asset, base currency) is authoritative for valuation.
type PricePoint struct {
	ID           uuid.UUID
	AssetID      uuid.UUID
	Timestamp    time.Time
	Price        decimal.Decimal
	BaseCurrency string
	// Source is a free-form provenance tag describing which data source and
	// conversion path produced the price (e.g. "yfinance(VOD.L)+fx(GBP->USD)").
	Source string
}
