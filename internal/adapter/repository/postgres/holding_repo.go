package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// Create creates a new holding
func (r *holdingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO holdings (id, account, asset_id, qty)
		VALUES ($1, $2, $3, $4)
	`

	account := holding.Account
	if account == "" {
		account = domain.DefaultAccount
	}

	_, err := r.db.ExecContext(ctx, query,
		holding.ID,
		account,
		holding.AssetID,
		holding.Quantity.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}

	return nil
}

// Delete removes a holding by its ID
func (r *holdingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("holding %s not found", id)
	}

	return nil
}

// List retrieves all holdings
func (r *holdingRepository) List(ctx context.Context) ([]*domain.Holding, error) {
	query := `
		SELECT id, account, asset_id, qty
		FROM holdings
		ORDER BY account, id
	`
	return r.queryHoldings(ctx, query)
}

// ListByAccount retrieves holdings for a single account label
func (r *holdingRepository) ListByAccount(ctx context.Context, account string) ([]*domain.Holding, error) {
	query := `
		SELECT id, account, asset_id, qty
		FROM holdings
		WHERE account = $1
		ORDER BY id
	`
	return r.queryHoldings(ctx, query, account)
}

func (r *holdingRepository) queryHoldings(ctx context.Context, query string, args ...any) ([]*domain.Holding, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		var holding domain.Holding
		var qtyStr string

		if err := rows.Scan(&holding.ID, &holding.Account, &holding.AssetID, &qtyStr); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse qty: %w", err)
		}
		holding.Quantity = qty

		holdings = append(holdings, &holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}
