// Package module defines the small interfaces components depend on, so that
// implementations (prometheus collectors, test doubles) can be swapped at
// composition time.
package module

// CacheMetrics instruments a keyed cache.
type CacheMetrics interface {
	// CacheHit records a read served from the cache.
	CacheHit(resource string)

	// CacheMiss records a read that found no usable entry.
	CacheMiss(resource string)

	// CacheExpired records a read that found an entry past its TTL.
	CacheExpired(resource string)

	// CacheEntries records the current number of entries.
	CacheEntries(resource string, entries uint)
}

// ReaderMetrics instruments registry snapshot fetches.
type ReaderMetrics interface {
	// RegistryFetched records one fetch+decode attempt.
	RegistryFetched(success bool)
}

// RestMetrics instruments the HTTP API.
type RestMetrics interface {
	// RequestHandled records one handled request.
	RequestHandled(route string, status int)
}
