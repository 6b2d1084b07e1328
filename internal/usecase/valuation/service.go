package valuation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openportfolio/portfolio-backend/internal/domain"
	"github.com/openportfolio/portfolio-backend/internal/usecase/pricing"
)

// Resolver resolves a fresh spot price for a stored asset
type Resolver interface {
	ResolveAsset(ctx context.Context, asset *domain.Asset, targetCurrency string) (pricing.SpotPrice, error)
}

// Line is one valued holding in a portfolio snapshot
type Line struct {
	Symbol    string
	Kind      domain.AssetKind
	Account   string
	Quantity  decimal.Decimal
	LastPrice decimal.Decimal
	Value     decimal.Decimal
}

// Overview is a portfolio snapshot in one base currency. Omitted lists the
// symbols of holdings that could not be priced; they are excluded from both
// Total and Lines rather than failing the snapshot.
type Overview struct {
	BaseCurrency string
	Total        decimal.Decimal
	Lines        []Line
	Omitted      []string
}

// Service computes portfolio snapshots from holdings and stored prices
type Service struct {
	AssetRepo   domain.AssetRepository
	HoldingRepo domain.HoldingRepository
	PriceRepo   domain.PriceRepository
	Resolver    Resolver
	Logger      *zap.Logger
}

// NewService creates a new valuation Service instance
func NewService(
	assetRepo domain.AssetRepository,
	holdingRepo domain.HoldingRepository,
	priceRepo domain.PriceRepository,
	resolver Resolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		AssetRepo:   assetRepo,
		HoldingRepo: holdingRepo,
		PriceRepo:   priceRepo,
		Resolver:    resolver,
		Logger:      logger,
	}
}

// Overview values all holdings (account == "") or one account's holdings in
// the given base currency. A holding with no stored price gets one
// synchronous resolve-and-store attempt; holdings that still cannot be
// priced are dropped from the snapshot and reported in Omitted. The snapshot
// itself always succeeds; only repository access errors are returned.
func (s *Service) Overview(ctx context.Context, account, baseCurrency string) (*Overview, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))

	var holdings []*domain.Holding
	var err error
	if account == "" {
		holdings, err = s.HoldingRepo.List(ctx)
	} else {
		holdings, err = s.HoldingRepo.ListByAccount(ctx, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	overview := &Overview{BaseCurrency: base, Total: decimal.Zero, Lines: []Line{}}
	if len(holdings) == 0 {
		return overview, nil
	}

	// One price lookup per asset, shared across its holdings
	priced := make(map[uuid.UUID]decimal.Decimal)
	failed := make(map[uuid.UUID]bool)
	assets := make(map[uuid.UUID]*domain.Asset)
	omitted := make(map[string]bool)

	for _, h := range holdings {
		asset, ok := assets[h.AssetID]
		if !ok {
			asset, err = s.AssetRepo.GetByID(ctx, h.AssetID)
			if err != nil {
				return nil, fmt.Errorf("failed to load asset %s: %w", h.AssetID, err)
			}
			assets[h.AssetID] = asset
		}

		price, ok := priced[h.AssetID]
		if !ok {
			if failed[h.AssetID] {
				s.omit(overview, omitted, asset.Symbol)
				continue
			}
			p, perr := s.latestOrResolve(ctx, asset, base)
			if perr != nil {
				s.Logger.Warn("holding left unpriced",
					zap.String("symbol", asset.Symbol),
					zap.String("base_ccy", base),
					zap.Error(perr))
				failed[h.AssetID] = true
				s.omit(overview, omitted, asset.Symbol)
				continue
			}
			price = p
			priced[h.AssetID] = price
		}

		value := h.Quantity.Mul(price)
		overview.Total = overview.Total.Add(value)
		overview.Lines = append(overview.Lines, Line{
			Symbol:    asset.Symbol,
			Kind:      asset.Kind,
			Account:   h.Account,
			Quantity:  h.Quantity,
			LastPrice: price,
			Value:     value,
		})
	}

	// Largest positions first; ties keep retrieval order
	sort.SliceStable(overview.Lines, func(i, j int) bool {
		return overview.Lines[i].Value.GreaterThan(overview.Lines[j].Value)
	})

	return overview, nil
}

// latestOrResolve returns the most recent stored price, falling back to one
// on-demand resolve-and-store attempt when nothing has been recorded yet.
func (s *Service) latestOrResolve(ctx context.Context, asset *domain.Asset, base string) (decimal.Decimal, error) {
	point, err := s.PriceRepo.GetLatest(ctx, asset.ID, base)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read latest price: %w", err)
	}
	if point != nil {
		return point.Price, nil
	}

	sp, err := s.Resolver.ResolveAsset(ctx, asset, base)
	if err != nil {
		return decimal.Zero, err
	}

	point = &domain.PricePoint{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		Timestamp:    time.Now().UTC(),
		Price:        sp.Price,
		BaseCurrency: base,
		Source:       sp.Source,
	}
	if err := s.PriceRepo.Add(ctx, point); err != nil {
		// The resolved price is still good for this snapshot
		s.Logger.Warn("failed to store on-demand price",
			zap.String("symbol", asset.Symbol),
			zap.Error(err))
	}
	return sp.Price, nil
}

func (s *Service) omit(overview *Overview, seen map[string]bool, symbol string) {
	if seen[symbol] {
		return
	}
	seen[symbol] = true
	overview.Omitted = append(overview.Omitted, symbol)
}
