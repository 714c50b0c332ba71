package address

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Cache defaults.
const (
	DefaultCacheSize     = 100
	DefaultCacheTTL      = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

// CacheConfig holds configuration for the address cache.
type CacheConfig struct {
	// MaxEntries bounds the cache size (default 100). The oldest entry is
	// evicted when a store would exceed it.
	MaxEntries int

	// TTL is how long an entry stays reachable (default 5 minutes).
	TTL time.Duration

	// Logger for cache maintenance.
	Logger zerolog.Logger
}

// Cache maps resolved-address fingerprints to standardized addresses with
// bounded size and time-based expiration. Expired entries are purged lazily
// on access and by an optional periodic sweeper.
type Cache struct {
	maxEntries int
	ttl        time.Duration
	logger     zerolog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // insertion order, oldest first

	sweepStop chan struct{}

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

type cacheEntry struct {
	address    *Address
	insertedAt time.Time
}

// NewCache creates an address cache.
func NewCache(cfg CacheConfig) *Cache {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		logger:     cfg.Logger,
		entries:    make(map[string]*cacheEntry),
	}
}

// Lookup returns the cached address for a fingerprint, or a miss if absent
// or older than the TTL. Expired entries encountered here are removed.
func (c *Cache) Lookup(fingerprint string) (*Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		c.misses++
		return nil, false
	}

	if time.Since(entry.insertedAt) > c.ttl {
		c.removeLocked(fingerprint)
		c.expired++
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.address, true
}

// Store inserts an address under a fingerprint. Expired entries are purged
// first; if the cache is still full, the oldest entry is evicted.
func (c *Cache) Store(fingerprint string, addr *Address) {
	if fingerprint == "" || addr == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked()

	if _, ok := c.entries[fingerprint]; ok {
		// Refresh in place; insertion order keeps the original slot.
		c.entries[fingerprint] = &cacheEntry{address: addr, insertedAt: time.Now()}
		return
	}

	if len(c.entries) >= c.maxEntries {
		oldest := c.order[0]
		c.removeLocked(oldest)
		c.evictions++
		c.logger.Debug().Str("fingerprint", oldest).Msg("evicted oldest address cache entry")
	}

	c.entries[fingerprint] = &cacheEntry{address: addr, insertedAt: time.Now()}
	c.order = append(c.order, fingerprint)
}

// Clear resets all cache state. Used on teardown and in tests.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
	c.hits, c.misses, c.evictions, c.expired = 0, 0, 0, 0
}

// StartSweeper launches a periodic expiration sweep. Starting while a sweep
// is already running replaces the running one instead of stacking a second.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	c.mu.Lock()
	if c.sweepStop != nil {
		close(c.sweepStop)
	}
	stop := make(chan struct{})
	c.sweepStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.mu.Lock()
				purged := c.purgeExpiredLocked()
				c.mu.Unlock()
				if purged > 0 {
					c.logger.Debug().Int("purged", purged).Msg("address cache sweep")
				}
			}
		}
	}()
}

// StopSweeper stops the periodic sweep. Safe to call repeatedly.
func (c *Cache) StopSweeper() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sweepStop != nil {
		close(c.sweepStop)
		c.sweepStop = nil
	}
}

func (c *Cache) purgeExpiredLocked() int {
	purged := 0
	for key, entry := range c.entries {
		if time.Since(entry.insertedAt) > c.ttl {
			c.removeLocked(key)
			c.expired++
			purged++
		}
	}
	return purged
}

func (c *Cache) removeLocked(fingerprint string) {
	delete(c.entries, fingerprint)
	for i, k := range c.order {
		if k == fingerprint {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CacheStats contains cache counters for the ops surface.
type CacheStats struct {
	Entries   int   `json:"entries"`
	MaxSize   int   `json:"maxSize"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		MaxSize:   c.maxEntries,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
}
