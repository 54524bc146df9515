package client

import (
	"sync"
	"time"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/module"
	"github.com/solworks/lookup-registry/module/metrics"
)

// DefaultCacheTTL is how long a cached snapshot stays usable.
const DefaultCacheTTL = time.Hour

// snapshotCache maps authorities to their most recently fetched registry
// snapshot. A single read/write lock protects the whole map; snapshot values
// are swapped wholesale and never mutated in place, so readers never observe
// partial state. Entries past their TTL behave as absent on read; they are
// only physically replaced by the next successful fetch.
type snapshotCache struct {
	mu      sync.RWMutex
	entries map[lookup.Address]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	metrics module.CacheMetrics
}

type cacheEntry struct {
	snapshot   *lookup.Snapshot
	insertedAt time.Time
}

func newSnapshotCache(ttl time.Duration, collector module.CacheMetrics) *snapshotCache {
	return &snapshotCache{
		entries: make(map[lookup.Address]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		metrics: collector,
	}
}

// get returns the authority's snapshot if one is cached and not expired.
func (c *snapshotCache) get(authority lookup.Address) (*lookup.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[authority]
	if !ok {
		c.metrics.CacheMiss(metrics.ResourceRegistrySnapshot)
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		c.metrics.CacheExpired(metrics.ResourceRegistrySnapshot)
		return nil, false
	}

	c.metrics.CacheHit(metrics.ResourceRegistrySnapshot)
	return entry.snapshot, true
}

// put replaces the authority's entry with a fresh TTL. Concurrent fetches
// for the same authority are not deduplicated; whichever put lands last
// wins the slot.
func (c *snapshotCache) put(authority lookup.Address, snapshot *lookup.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[authority] = cacheEntry{
		snapshot:   snapshot,
		insertedAt: c.now(),
	}
	c.metrics.CacheEntries(metrics.ResourceRegistrySnapshot, uint(len(c.entries)))
}
