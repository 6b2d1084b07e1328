package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// stubQuotes serves canned quotes per ticker and counts lookups.
type stubQuotes struct {
	mu     sync.Mutex
	prices map[string]domain.Quote
	calls  map[string]int
}

func newStubQuotes(prices map[string]float64) *stubQuotes {
	s := &stubQuotes{prices: make(map[string]domain.Quote), calls: make(map[string]int)}
	for ticker, px := range prices {
		s.prices[ticker] = domain.Quote{LastPrice: decimal.NewFromFloat(px)}
	}
	return s
}

func (s *stubQuotes) set(ticker string, q domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[ticker] = q
}

func (s *stubQuotes) Quote(_ context.Context, ticker string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[ticker]++
	q, ok := s.prices[ticker]
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, ticker)
	}
	return q, nil
}

func (s *stubQuotes) callCount(ticker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[ticker]
}

func (s *stubQuotes) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// stubCrypto serves a canned coin catalogue and simple-price table.
type stubCrypto struct {
	mu        sync.Mutex
	coins     []domain.CoinListing
	prices    map[string]map[string]float64
	listCalls int
	listErr   error
}

func (s *stubCrypto) ListCoins(_ context.Context) ([]domain.CoinListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.coins, nil
}

func (s *stubCrypto) SimplePrice(_ context.Context, ids []string, vsCurrency string) (map[string]map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]float64, len(ids))
	for _, id := range ids {
		if p, ok := s.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubCrypto) listCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}
