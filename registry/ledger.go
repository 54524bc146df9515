package registry

import (
	"sync"

	"github.com/solworks/lookup-registry/model/lookup"
)

// Ledger is the authoritative store of registry state, one registry per
// authority. The execution environment guarantees that at most one mutation
// to a given registry commits at a time.
type Ledger interface {
	// Registry returns the authority's registry.
	// Expected errors: lookup.ErrRegistryNotFound if none exists.
	Registry(authority lookup.Address) (*lookup.Registry, error)

	// PutRegistry replaces the authority's registry wholesale.
	PutRegistry(registry *lookup.Registry) error
}

// MemLedger is an in-memory Ledger. Writes replace the stored value
// wholesale, reads return copies, so callers never share mutable state.
type MemLedger struct {
	mu         sync.RWMutex
	registries map[lookup.Address]*lookup.Registry
}

var _ Ledger = (*MemLedger)(nil)

func NewMemLedger() *MemLedger {
	return &MemLedger{
		registries: make(map[lookup.Address]*lookup.Registry),
	}
}

func (l *MemLedger) Registry(authority lookup.Address) (*lookup.Registry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	registry, ok := l.registries[authority]
	if !ok {
		return nil, lookup.ErrRegistryNotFound
	}
	return registry.Copy(), nil
}

func (l *MemLedger) PutRegistry(registry *lookup.Registry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registries[registry.Authority] = registry.Copy()
	return nil
}
