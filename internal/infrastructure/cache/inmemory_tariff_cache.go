package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/powergrid/backend/internal/application/tariff"
	domaintariff "github.com/powergrid/backend/internal/domain/tariff"
)

// InMemoryTariffCache is a process-local tariff cache for single-instance
// deployments and tests. Entries expire lazily on read.
type InMemoryTariffCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryTariffEntry
	ttl     time.Duration
}

type inMemoryTariffEntry struct {
	tariff    *domaintariff.Tariff
	expiresAt time.Time
}

// NewInMemoryTariffCache creates an in-memory tariff cache
func NewInMemoryTariffCache(ttl time.Duration) *InMemoryTariffCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InMemoryTariffCache{
		entries: make(map[string]inMemoryTariffEntry),
		ttl:     ttl,
	}
}

// GetResolved returns the cached tariff for the category and date, if present
func (c *InMemoryTariffCache) GetResolved(_ context.Context, category domaintariff.Category, asOf time.Time) (*domaintariff.Tariff, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(category, asOf)]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.tariff, true
}

// SetResolved stores the resolved tariff for the category and date
func (c *InMemoryTariffCache) SetResolved(_ context.Context, category domaintariff.Category, asOf time.Time, t *domaintariff.Tariff) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(category, asOf)] = inMemoryTariffEntry{
		tariff:    t,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateCategory drops every cached resolution for the category
func (c *InMemoryTariffCache) InvalidateCategory(_ context.Context, category domaintariff.Category) {
	prefix := string(category) + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func cacheKey(category domaintariff.Category, asOf time.Time) string {
	return string(category) + ":" + asOf.Format("2006-01-02")
}

// Ensure InMemoryTariffCache implements the application cache port
var _ tariff.Cache = (*InMemoryTariffCache)(nil)
