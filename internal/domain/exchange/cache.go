package exchange

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, currency string) (Quote, bool, error)
	Set(ctx context.Context, currency string, q Quote, ttl time.Duration) error
}

type memoryEntry struct {
	quote     Quote
	expiresAt time.Time
}

// MemoryCache keeps quotes in process; used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, currency string) (Quote, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[currency]
	c.mu.RUnlock()
	if !ok {
		return Quote{}, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[currency]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, currency)
		}
		c.mu.Unlock()
		return Quote{}, false, nil
	}
	return e.quote, true, nil
}

func (c *MemoryCache) Set(_ context.Context, currency string, q Quote, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[currency] = memoryEntry{quote: q, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
