// Package cache provides the in-memory result cache for completed detections.
//
// Entries expire after a fixed TTL and the cache is capacity-bounded: once the
// entry count exceeds the ceiling, the single insertion-oldest entry is evicted.
package cache

import (
	"sync"
	"time"

	"github.com/themescan/go-themescan/internal/models"
)

const (
	// DefaultTTL is how long a cached detection result stays valid
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity is the maximum number of cached results
	DefaultCapacity = 100
)

// entry pairs a stored result with its insertion time.
type entry struct {
	result  models.DetectionResult
	created time.Time
}

// ResultCache is a TTL cache of detection results keyed by normalized URL.
// Safe for concurrent use by overlapping detections.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int

	// now is swappable for expiry tests
	now func() time.Time
}

// New creates a ResultCache with the given TTL and capacity. Non-positive
// arguments fall back to the defaults.
func New(ttl time.Duration, capacity int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResultCache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached result for the normalized URL if it is younger than
// the TTL. A stale entry is deleted and reported as a miss.
func (c *ResultCache) Get(url string) (models.DetectionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return models.DetectionResult{}, false
	}
	if c.now().Sub(e.created) > c.ttl {
		delete(c.entries, url)
		return models.DetectionResult{}, false
	}
	return e.result.Clone(), true
}

// Set stores a result under the normalized URL with the current timestamp,
// then evicts the insertion-oldest entry if the capacity is exceeded.
func (c *ResultCache) Set(url string, result models.DetectionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = entry{result: result.Clone(), created: c.now()}

	if len(c.entries) <= c.capacity {
		return
	}
	var oldestKey string
	var oldestTime time.Time
	for key, e := range c.entries {
		if oldestKey == "" || e.created.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.created
		}
	}
	delete(c.entries, oldestKey)
}

// Clear removes every cached entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats reports the current entry count and cached URLs.
func (c *ResultCache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]string, 0, len(c.entries))
	for key := range c.entries {
		entries = append(entries, key)
	}
	return models.CacheStats{Size: len(c.entries), Entries: entries}
}
