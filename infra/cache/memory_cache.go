package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/fxconverter/pkg/cache"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

// MemoryCache implements cache.RateCache using in-memory storage
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	rate      exchange.RateInfo
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache and starts its sweeper.
// Call Close to stop it.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return newMemoryCache(cleanupInterval, time.Now)
}

func newMemoryCache(cleanupInterval time.Duration, now func() time.Time) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	c := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		now:   now,
		stop:  make(chan struct{}),
	}

	go c.cleanup(cleanupInterval)

	return c
}

// Get retrieves a rate from cache
func (c *MemoryCache) Get(_ context.Context, key string) (*exchange.RateInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists || !c.now().Before(entry.expiresAt) {
		return nil, nil
	}

	rate := entry.rate
	return &rate, nil
}

// Set stores a copy of rate with TTL. A non-positive TTL is a no-op.
func (c *MemoryCache) Set(
	_ context.Context,
	key string,
	rate *exchange.RateInfo,
	ttl time.Duration,
) error {
	if rate == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		rate:      *rate,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a rate from cache
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close stops the sweeper. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes expired entries from cache
func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.cache {
		if !now.Before(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}

var _ cache.RateCache = (*MemoryCache)(nil)
