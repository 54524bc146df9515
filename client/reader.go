// Package client implements the client side of the lookup table registry:
// snapshot fetching, the TTL-bounded registry cache, the greedy compression
// pass, and the authority-signed mutation writer.
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/module"
	"github.com/solworks/lookup-registry/module/metrics"
)

// Reader answers registry queries for any authority, mediating repeated
// lookups through an owned snapshot cache. It is safe for concurrent use.
type Reader struct {
	rpc     AccountReader
	cache   *snapshotCache
	log     zerolog.Logger
	metrics module.ReaderMetrics
}

// ReaderOption customizes a Reader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	ttl           time.Duration
	cacheMetrics  module.CacheMetrics
	readerMetrics module.ReaderMetrics
}

// WithCacheTTL overrides how long cached snapshots stay usable.
func WithCacheTTL(ttl time.Duration) ReaderOption {
	return func(cfg *readerConfig) {
		cfg.ttl = ttl
	}
}

// WithCacheMetrics wires a collector for cache hits and misses.
func WithCacheMetrics(collector module.CacheMetrics) ReaderOption {
	return func(cfg *readerConfig) {
		cfg.cacheMetrics = collector
	}
}

// WithReaderMetrics wires a collector for fetch outcomes.
func WithReaderMetrics(collector module.ReaderMetrics) ReaderOption {
	return func(cfg *readerConfig) {
		cfg.readerMetrics = collector
	}
}

func NewReader(rpc AccountReader, log zerolog.Logger, options ...ReaderOption) *Reader {
	cfg := readerConfig{
		ttl:           DefaultCacheTTL,
		cacheMetrics:  metrics.NewNoopCollector(),
		readerMetrics: metrics.NewNoopCollector(),
	}
	for _, option := range options {
		option(&cfg)
	}
	return &Reader{
		rpc:     rpc,
		cache:   newSnapshotCache(cfg.ttl, cfg.cacheMetrics),
		log:     log.With().Str("component", "registry_reader").Logger(),
		metrics: cfg.readerMetrics,
	}
}

// GetRegistry returns the authority's registry snapshot, reading through
// the cache: a non-expired cached snapshot is returned directly, otherwise
// the registry is fetched, cached with a fresh TTL, and returned. On fetch
// failure it returns absent without modifying any existing cache state.
func (r *Reader) GetRegistry(ctx context.Context, authority lookup.Address) (*lookup.Snapshot, bool) {
	if snapshot, ok := r.cache.get(authority); ok {
		return snapshot, true
	}

	snapshot, err := FetchSnapshot(ctx, r.rpc, authority)
	if err != nil {
		r.metrics.RegistryFetched(false)
		r.log.Debug().Err(err).
			Str("authority", authority.String()).
			Msg("could not fetch registry")
		return nil, false
	}
	r.metrics.RegistryFetched(true)
	r.cache.put(authority, snapshot)

	return snapshot, true
}

// UpdateRegistries refetches the given authorities unconditionally,
// replacing their cache entries on success. It returns the authorities that
// were not found or otherwise incurred some error; their prior cache
// values, if any, are left untouched.
func (r *Reader) UpdateRegistries(ctx context.Context, authorities []lookup.Address) []lookup.Address {
	var failed []lookup.Address
	for _, authority := range authorities {
		snapshot, err := FetchSnapshot(ctx, r.rpc, authority)
		if err != nil {
			r.metrics.RegistryFetched(false)
			r.log.Debug().Err(err).
				Str("authority", authority.String()).
				Msg("could not refresh registry")
			failed = append(failed, authority)
			continue
		}
		r.metrics.RegistryFetched(true)
		r.cache.put(authority, snapshot)
	}
	return failed
}

// GetTables returns all currently cached lookup tables of the given
// authorities. It never fetches: only cached, non-expired snapshots
// contribute.
func (r *Reader) GetTables(authorities []lookup.Address) []*lookup.TableAccount {
	var tables []*lookup.TableAccount
	for _, authority := range authorities {
		snapshot, ok := r.cache.get(authority)
		if !ok {
			continue
		}
		for _, table := range snapshot.Tables {
			tables = append(tables, &lookup.TableAccount{
				Key:       table.TableAddress,
				Addresses: table.Addresses,
			})
		}
	}
	return tables
}

// FindAddresses runs the compression pass over the instructions using the
// authorities' cached snapshots, consulted in the given order. Authorities
// with no usable cache entry are skipped silently; absent input degrades
// the match quality, never the output shape.
func (r *Reader) FindAddresses(instructions []lookup.Instruction, authorities []lookup.Address) FindResult {
	snapshots := make([]*lookup.Snapshot, 0, len(authorities))
	for _, authority := range authorities {
		if snapshot, ok := r.cache.get(authority); ok {
			snapshots = append(snapshots, snapshot)
		}
	}
	return Compress(instructions, snapshots)
}
