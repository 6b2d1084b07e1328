package seeder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// DemoSeeder populates an empty database with a small demo portfolio so a
// fresh instance has something to show. Safe to run on every startup.
type DemoSeeder struct {
	assetRepo   domain.AssetRepository
	holdingRepo domain.HoldingRepository
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(assetRepo domain.AssetRepository, holdingRepo domain.HoldingRepository) *DemoSeeder {
	return &DemoSeeder{
		assetRepo:   assetRepo,
		holdingRepo: holdingRepo,
	}
}

type demoHolding struct {
	Asset    domain.Asset
	Quantity decimal.Decimal
}

// Seed creates demo assets when no assets exist, and demo holdings when no
// holdings exist. An already-populated database is left untouched.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	demo := []demoHolding{
		{
			Asset: domain.Asset{
				Symbol:      "BTC",
				Kind:        domain.AssetKindCrypto,
				Provider:    domain.ProviderCoinGecko,
				ProviderRef: "bitcoin",
			},
			Quantity: decimal.NewFromFloat(0.05),
		},
		{
			Asset: domain.Asset{
				Symbol:      "XMR",
				Kind:        domain.AssetKindCrypto,
				Provider:    domain.ProviderCoinGecko,
				ProviderRef: "monero",
			},
			Quantity: decimal.NewFromInt(2),
		},
		{
			Asset: domain.Asset{
				Symbol:         "XAG",
				Kind:           domain.AssetKindMetal,
				Provider:       domain.ProviderYFinance,
				ProviderRef:    "XAGUSD=X",
				NativeCurrency: "USD",
			},
			Quantity: decimal.NewFromInt(10),
		},
		{
			Asset: domain.Asset{
				Symbol:         "AAPL",
				Kind:           domain.AssetKindEquity,
				Provider:       domain.ProviderYFinance,
				ProviderRef:    "AAPL",
				NativeCurrency: "USD",
			},
			Quantity: decimal.NewFromInt(3),
		},
	}

	existingAssets, err := s.assetRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	if len(existingAssets) == 0 {
		for i := range demo {
			asset := &demo[i].Asset
			asset.ID = uuid.New()

			if err := asset.Validate(); err != nil {
				return err
			}
			if err := s.assetRepo.Create(ctx, asset); err != nil {
				return fmt.Errorf("failed to seed asset %s: %w", asset.Symbol, err)
			}
		}
	}

	existingHoldings, err := s.holdingRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list holdings: %w", err)
	}
	if len(existingHoldings) > 0 {
		return nil
	}

	for _, d := range demo {
		asset, err := s.assetRepo.GetBySymbol(ctx, d.Asset.Symbol)
		if err != nil || asset == nil {
			continue
		}

		holding := &domain.Holding{
			ID:       uuid.New(),
			Account:  "Demo",
			AssetID:  asset.ID,
			Quantity: d.Quantity,
		}
		if err := holding.Validate(); err != nil {
			return err
		}
		if err := s.holdingRepo.Create(ctx, holding); err != nil {
			return fmt.Errorf("failed to seed holding for %s: %w", d.Asset.Symbol, err)
		}
	}

	return nil
}
