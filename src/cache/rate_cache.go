package cache

import (
	"sync"
	"time"

	"exchange-chat/src/models"
)

// CacheEntry is a cached provider response with the time it was stored.
type CacheEntry struct {
	Day       models.MDayRates
	Timestamp time.Time
}

// RateCache is a thread-safe in-memory cache of full (unfiltered) day
// responses keyed by the requested date. Archive data for past days does not
// change, so entries only expire to bound memory.
type RateCache struct {
	cache      map[string]CacheEntry
	expiration time.Duration
	mutex      sync.RWMutex
	now        func() time.Time
}

// NewRateCache creates a cache. A zero ttl disables caching.
func NewRateCache(ttl time.Duration) *RateCache {
	return &RateCache{
		cache:      make(map[string]CacheEntry),
		expiration: ttl,
		now:        time.Now,
	}
}

func cacheKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// Get returns the cached day for date if present and not expired.
func (c *RateCache) Get(date time.Time) (models.MDayRates, bool) {
	if c == nil || c.expiration <= 0 {
		return models.MDayRates{}, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[cacheKey(date)]
	if !exists || c.now().Sub(entry.Timestamp) > c.expiration {
		return models.MDayRates{}, false
	}
	return entry.Day, true
}

// Put stores day as the answer for date and drops whatever has expired, so
// the map never holds more than one TTL's worth of dates.
func (c *RateCache) Put(date time.Time, day models.MDayRates) {
	if c == nil || c.expiration <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.purgeLocked()
	c.cache[cacheKey(date)] = CacheEntry{Day: day, Timestamp: c.now()}
}

// Size returns the number of entries, including expired ones not yet purged.
func (c *RateCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// Purge drops expired entries.
func (c *RateCache) Purge() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.purgeLocked()
}

func (c *RateCache) purgeLocked() int {
	removed := 0
	now := c.now()
	for k, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, k)
			removed++
		}
	}
	return removed
}
