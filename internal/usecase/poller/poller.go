package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openportfolio/portfolio-backend/internal/domain"
	"github.com/openportfolio/portfolio-backend/internal/usecase/pricing"
)

// Resolver resolves a fresh spot price for a stored asset
type Resolver interface {
	ResolveAsset(ctx context.Context, asset *domain.Asset, targetCurrency string) (pricing.SpotPrice, error)
}

// Summary tallies one poll cycle. Per-asset failures never abort the cycle;
// they are counted here for observability.
type Summary struct {
	OK   int
	Fail int
}

// Service fetches and stores a fresh price for every asset on a fixed
// interval.
type Service struct {
	AssetRepo    domain.AssetRepository
	PriceRepo    domain.PriceRepository
	Resolver     Resolver
	BaseCurrency string
	Logger       *zap.Logger
}

// NewService creates a new poller Service instance
func NewService(
	assetRepo domain.AssetRepository,
	priceRepo domain.PriceRepository,
	resolver Resolver,
	baseCurrency string,
	logger *zap.Logger,
) *Service {
	return &Service{
		AssetRepo:    assetRepo,
		PriceRepo:    priceRepo,
		Resolver:     resolver,
		BaseCurrency: baseCurrency,
		Logger:       logger,
	}
}

// PollOne resolves and stores one price point for a single asset
func (s *Service) PollOne(ctx context.Context, asset *domain.Asset) error {
	sp, err := s.Resolver.ResolveAsset(ctx, asset, s.BaseCurrency)
	if err != nil {
		return err
	}

	point := &domain.PricePoint{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		Timestamp:    time.Now().UTC(),
		Price:        sp.Price,
		BaseCurrency: s.BaseCurrency,
		Source:       sp.Source,
	}
	if err := s.PriceRepo.Add(ctx, point); err != nil {
		return fmt.Errorf("%s: failed to store price point: %w", asset.Symbol, err)
	}
	return nil
}

// PollAll runs one full poll cycle over every asset. Assets are polled
// independently: a failure is logged and tallied, never propagated.
func (s *Service) PollAll(ctx context.Context) (Summary, error) {
	assets, err := s.AssetRepo.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list assets: %w", err)
	}

	var summary Summary
	for _, asset := range assets {
		if err := s.PollOne(ctx, asset); err != nil {
			s.Logger.Warn("poll failed",
				zap.String("symbol", asset.Symbol),
				zap.String("base_ccy", s.BaseCurrency),
				zap.Error(err))
			summary.Fail++
			continue
		}
		summary.OK++
	}

	s.Logger.Info("poll cycle finished",
		zap.Int("ok", summary.OK),
		zap.Int("fail", summary.Fail),
		zap.String("base_ccy", s.BaseCurrency))
	return summary, nil
}

// Run polls immediately, then on every tick until the context is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.PollAll(ctx); err != nil {
		s.Logger.Error("poll cycle aborted", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PollAll(ctx); err != nil {
				s.Logger.Error("poll cycle aborted", zap.Error(err))
			}
		}
	}
}
