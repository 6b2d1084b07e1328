package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// Create creates a new asset
func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (id, symbol, kind, provider, provider_ref, native_ccy)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		asset.ID,
		asset.NormalizedSymbol(),
		string(asset.Kind),
		string(asset.Provider),
		asset.ProviderRef,
		asset.NativeCurrency,
	)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by its ID
func (r *assetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	query := `
		SELECT id, symbol, kind, provider, provider_ref, native_ccy
		FROM assets
		WHERE id = $1
	`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("asset not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get asset by ID: %w", err)
	}
	return asset, nil
}

// GetBySymbol retrieves an asset by symbol, case-insensitively.
// Returns nil when no asset matches.
func (r *assetRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	query := `
		SELECT id, symbol, kind, provider, provider_ref, native_ccy
		FROM assets
		WHERE UPPER(symbol) = UPPER($1)
	`

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset by symbol: %w", err)
	}
	return asset, nil
}

// List retrieves all assets
func (r *assetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT id, symbol, kind, provider, provider_ref, native_ccy
		FROM assets
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var kind, provider string

	err := row.Scan(
		&asset.ID,
		&asset.Symbol,
		&kind,
		&provider,
		&asset.ProviderRef,
		&asset.NativeCurrency,
	)
	if err != nil {
		return nil, err
	}

	asset.Kind = domain.AssetKind(kind)
	asset.Provider = domain.ProviderName(provider)
	return &asset, nil
}
