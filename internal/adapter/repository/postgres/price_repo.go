package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// priceRepository implements domain.PriceRepository
type priceRepository struct {
	db *DB
}

// NewPriceRepository creates a new price point repository
func NewPriceRepository(db *DB) domain.PriceRepository {
	return &priceRepository{db: db}
}

// Add appends a new price point; rows are never updated
func (r *priceRepository) Add(ctx context.Context, point *domain.PricePoint) error {
	query := `
		INSERT INTO price_points (id, asset_id, ts, price, base_ccy, source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		point.ID,
		point.AssetID,
		point.Timestamp,
		point.Price.String(),
		point.BaseCurrency,
		point.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price point: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent price point for an asset in a base
// currency. Returns nil when no price has been recorded.
func (r *priceRepository) GetLatest(ctx context.Context, assetID uuid.UUID, baseCurrency string) (*domain.PricePoint, error) {
	query := `
		SELECT id, asset_id, ts, price, base_ccy, source
		FROM price_points
		WHERE asset_id = $1 AND base_ccy = $2
		ORDER BY ts DESC
		LIMIT 1
	`

	var point domain.PricePoint
	var priceStr string

	err := r.db.QueryRowContext(ctx, query, assetID, baseCurrency).Scan(
		&point.ID,
		&point.AssetID,
		&point.Timestamp,
		&priceStr,
		&point.BaseCurrency,
		&point.Source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	point.Price = price

	return &point, nil
}
