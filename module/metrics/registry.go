package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/solworks/lookup-registry/module"
)

// RegistryCollector implements the cache, reader and REST metrics on
// prometheus.
type RegistryCollector struct {
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	cacheExpired    *prometheus.CounterVec
	cacheEntries    *prometheus.GaugeVec
	registryFetches *prometheus.CounterVec
	restRequests    *prometheus.CounterVec
}

var _ module.CacheMetrics = (*RegistryCollector)(nil)
var _ module.ReaderMetrics = (*RegistryCollector)(nil)
var _ module.RestMetrics = (*RegistryCollector)(nil)

func NewRegistryCollector() *RegistryCollector {
	return &RegistryCollector{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "hits_total",
			Namespace: namespaceRegistry,
			Subsystem: subsystemCache,
			Help:      "number of reads served from the cache",
		}, []string{"resource"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "misses_total",
			Namespace: namespaceRegistry,
			Subsystem: subsystemCache,
			Help:      "number of reads that found no usable entry",
		}, []string{"resource"}),
		cacheExpired: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "expired_total",
			Namespace: namespaceRegistry,
			Subsystem: subsystemCache,
			Help:      "number of reads that found an entry past its TTL",
		}, []string{"resource"}),
		cacheEntries: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "entries",
			Namespace: namespaceRegistry,
			Subsystem: subsystemCache,
			Help:      "current number of cached entries",
		}, []string{"resource"}),
		registryFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "registry_fetches_total",
			Namespace: namespaceRegistry,
			Subsystem: subsystemReader,
			Help:      "number of registry fetch+decode attempts by result",
		}, []string{"result"}),
		restRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:      "requests_total",
			Namespace: namespaceRegistry,
			Subsystem: subsystemRest,
			Help:      "number of handled HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
}

func (c *RegistryCollector) CacheHit(resource string) {
	c.cacheHits.WithLabelValues(resource).Inc()
}

func (c *RegistryCollector) CacheMiss(resource string) {
	c.cacheMisses.WithLabelValues(resource).Inc()
}

func (c *RegistryCollector) CacheExpired(resource string) {
	c.cacheExpired.WithLabelValues(resource).Inc()
}

func (c *RegistryCollector) CacheEntries(resource string, entries uint) {
	c.cacheEntries.WithLabelValues(resource).Set(float64(entries))
}

func (c *RegistryCollector) RegistryFetched(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.registryFetches.WithLabelValues(result).Inc()
}

func (c *RegistryCollector) RequestHandled(route string, status int) {
	c.restRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
