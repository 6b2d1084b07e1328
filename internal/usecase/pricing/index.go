package pricing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openportfolio/portfolio-backend/internal/domain"
)

// DefaultIndexTTL is how long a built coin index stays valid.
const DefaultIndexTTL = 24 * time.Hour

// IndexCache maps crypto symbols and human names to provider ids. It is
// process-wide shared state: the index is built lazily from the full coin
// catalogue, kept for a TTL, and rebuilt under a write lock so at most one
// rebuild is in flight while readers keep serving the previous index.
type IndexCache struct {
	source domain.CryptoSource
	ttl    time.Duration
	now    func() time.Time

	mu         sync.RWMutex
	symbolToID map[string]string
	nameToID   map[string]string
	expiresAt  time.Time
}

// NewIndexCache creates an index cache over the given catalogue source
func NewIndexCache(source domain.CryptoSource) *IndexCache {
	return &IndexCache{
		source: source,
		ttl:    DefaultIndexTTL,
		now:    time.Now,
	}
}

// IDFor resolves a symbol or human name to a provider id, rebuilding the
// index first when it is empty or expired. Lookup tries the upper-case
// symbol first, then the lower-case name; a double miss fails with
// domain.ErrUnknownAsset.
func (c *IndexCache) IDFor(ctx context.Context, query string) (string, error) {
	if err := c.RefreshIfStale(ctx); err != nil {
		return "", err
	}

	symbolKey := strings.ToUpper(strings.TrimSpace(query))
	nameKey := strings.ToLower(strings.TrimSpace(query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.symbolToID[symbolKey]; ok {
		return id, nil
	}
	if id, ok := c.nameToID[nameKey]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q not in coin index", domain.ErrUnknownAsset, query)
}

// RefreshIfStale rebuilds the index when it is empty or past its TTL.
// Callers racing for the same rebuild serialize on the write lock and the
// loser reuses the winner's fresh index instead of rebuilding again.
func (c *IndexCache) RefreshIfStale(ctx context.Context) error {
	c.mu.RLock()
	fresh := c.symbolToID != nil && c.now().Before(c.expiresAt)
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the write lock: another caller may have rebuilt while
	// we waited for it.
	if c.symbolToID != nil && c.now().Before(c.expiresAt) {
		return nil
	}

	coins, err := c.source.ListCoins(ctx)
	if err != nil {
		if c.symbolToID != nil {
			// Keep serving the stale index; the next lookup retries the rebuild.
			return nil
		}
		return fmt.Errorf("failed to build coin index: %w", err)
	}

	symbolToID := make(map[string]string, len(coins))
	nameToID := make(map[string]string, len(coins))
	for _, coin := range coins {
		// First id seen per key wins; duplicates never overwrite, which keeps
		// resolution deterministic across rebuilds.
		symbolKey := strings.ToUpper(strings.TrimSpace(coin.Symbol))
		if _, ok := symbolToID[symbolKey]; !ok && symbolKey != "" {
			symbolToID[symbolKey] = coin.ID
		}
		nameKey := strings.ToLower(strings.TrimSpace(coin.Name))
		if _, ok := nameToID[nameKey]; !ok && nameKey != "" {
			nameToID[nameKey] = coin.ID
		}
	}

	c.symbolToID = symbolToID
	c.nameToID = nameToID
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}
