package metrics

const (
	namespaceRegistry = "lookup_registry"

	subsystemCache  = "cache"
	subsystemReader = "reader"
	subsystemRest   = "rest"
)

const (
	// ResourceRegistrySnapshot labels the authority -> snapshot cache.
	ResourceRegistrySnapshot = "registry_snapshot"
)
