// Package cache provides an in-memory key/value cache with per-entry TTL.
//
// Eviction is TTL-only: expired entries are dropped lazily on read and by a
// periodic background sweep. There is no size bound or LRU policy; capacity is
// assumed to fit memory for a single-process deployment.
package cache

import (
	"sync"
	"time"
)

// Config configures a cache instance.
type Config struct {
	DefaultTTL    time.Duration // TTL applied when Set is called with ttl <= 0 (default: 5 minutes)
	SweepInterval time.Duration // interval for expired entry cleanup (default: 5 minutes)
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:    5 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache[V any] struct {
	defaultTTL time.Duration

	mu   sync.RWMutex
	data map[string]entry[V]

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New creates a cache and starts its background sweeper.
// Callers must Close the cache to stop the sweeper.
func New[V any](cfg Config) *Cache[V] {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	c := &Cache[V]{
		defaultTTL: cfg.DefaultTTL,
		data:       make(map[string]entry[V]),
		done:       make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweepLoop(cfg.SweepInterval)

	return c
}

// Close stops the background sweeper.
func (c *Cache[V]) Close() {
	c.once.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// Set stores or overwrites a value. ttl <= 0 uses the default TTL.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get retrieves a value. An expired entry is treated as absent and evicted.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.data, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes an entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry[V])
}

// Size returns the number of entries, including not-yet-swept expired ones.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Sweep removes all expired entries and returns the number removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// sweepLoop periodically removes expired entries, independent of read traffic.
func (c *Cache[V]) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
