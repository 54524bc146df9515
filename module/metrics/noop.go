package metrics

// NoopCollector is used in tests and wherever metrics are not wired.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector { return &NoopCollector{} }

func (nc *NoopCollector) CacheHit(resource string)                   {}
func (nc *NoopCollector) CacheMiss(resource string)                  {}
func (nc *NoopCollector) CacheExpired(resource string)               {}
func (nc *NoopCollector) CacheEntries(resource string, entries uint) {}
func (nc *NoopCollector) RegistryFetched(success bool)               {}
func (nc *NoopCollector) RequestHandled(route string, status int)    {}
