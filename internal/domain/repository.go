package domain

import (
	"context"

	"github.com/google/uuid"
)

// AssetRepository defines the interface for asset persistence operations
type AssetRepository interface {
	// Create creates a new asset
	Create(ctx context.Context, asset *Asset) error

	// GetByID retrieves an asset by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// GetBySymbol retrieves an asset by symbol, case-insensitively,
	// or nil if no asset matches
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)

	// List retrieves all assets
	List(ctx context.Context) ([]*Asset, error)
}

// HoldingRepository defines the interface for holding persistence operations
type HoldingRepository interface {
	// Create creates a new holding
	Create(ctx context.Context, holding *Holding) error

	// Delete removes a holding by its ID
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves all holdings
	List(ctx context.Context) ([]*Holding, error)

	// ListByAccount retrieves holdings for a single account label
	ListByAccount(ctx context.Context, account string) ([]*Holding, error)
}

// PriceRepository defines the interface for price point persistence operations
type PriceRepository interface {
	// Add appends a new price point; rows are never updated
	Add(ctx context.Context, point *PricePoint) error

	// GetLatest retrieves the most recent price point for an asset in the
	// given base currency, or nil if none has been recorded
	GetLatest(ctx context.Context, assetID uuid.UUID, baseCurrency string) (*PricePoint, error)
}
