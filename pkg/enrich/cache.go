package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jacobdurrah/auction-bdding/pkg/logger"
	"github.com/jacobdurrah/auction-bdding/pkg/storage"
)

const valuationCacheFile = "valuations.json"

// ValuationCache fronts a ValuationProvider with a JSON file cache
// keyed by normalized address key. A cached not-found is terminal: the
// provider is never asked about that address again.
type ValuationCache struct {
	path     string
	provider ValuationProvider
	logger   logger.Logger

	mu      sync.Mutex
	entries map[string]*ValuationRecord
}

// NewValuationCache loads any existing cache file from dataDir.
func NewValuationCache(dataDir string, provider ValuationProvider) (*ValuationCache, error) {
	c := &ValuationCache{
		path:     filepath.Join(dataDir, valuationCacheFile),
		provider: provider,
		logger:   logger.GetLogger(),
		entries:  make(map[string]*ValuationRecord),
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read valuation cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to parse valuation cache: %w", err)
	}
	return c, nil
}

// Lookup returns the valuation for an address key, consulting the
// provider only on a cache miss. Provider errors other than not-found
// are passed through uncached so transient failures can be retried on
// a later pass.
func (c *ValuationCache) Lookup(ctx context.Context, addressKey string) (*ValuationRecord, error) {
	c.mu.Lock()
	if cached, ok := c.entries[addressKey]; ok {
		c.mu.Unlock()
		if cached.NotFound {
			return nil, ErrValuationNotFound
		}
		return cached, nil
	}
	c.mu.Unlock()

	record, err := c.provider.Lookup(ctx, addressKey)
	switch {
	case errors.Is(err, ErrValuationNotFound):
		record = &ValuationRecord{
			AddressKey:  addressKey,
			RetrievedAt: time.Now(),
			NotFound:    true,
		}
	case err != nil:
		return nil, err
	default:
		record.AddressKey = addressKey
		if record.RetrievedAt.IsZero() {
			record.RetrievedAt = time.Now()
		}
	}

	c.mu.Lock()
	c.entries[addressKey] = record
	c.mu.Unlock()

	if err := c.save(); err != nil {
		c.logger.WithError(err).Warn("Failed to persist valuation cache")
	}

	if record.NotFound {
		return nil, ErrValuationNotFound
	}
	return record, nil
}

func (c *ValuationCache) save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return storage.WriteJSON(c.path, c.entries)
}

// Size returns the number of cached entries, found and not-found.
func (c *ValuationCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
