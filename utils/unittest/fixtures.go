// Package unittest provides test fixtures for registry and lookup table
// state.
package unittest

import (
	"crypto/rand"

	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/model/lookup"
)

// Logger returns a silent logger for tests.
func Logger() zerolog.Logger {
	return zerolog.Nop()
}

// AddressFixture returns a random address.
func AddressFixture() lookup.Address {
	var address lookup.Address
	_, _ = rand.Read(address[:])
	return address
}

// AddressesFixture returns n random addresses.
func AddressesFixture(n int) []lookup.Address {
	addresses := make([]lookup.Address, n)
	for i := range addresses {
		addresses[i] = AddressFixture()
	}
	return addresses
}

// EntryFixture returns an active registry entry for a random table.
func EntryFixture() lookup.Entry {
	return lookup.Entry{
		Discriminator: lookup.DiscriminatorDeactivated + 1,
		Table:         AddressFixture(),
	}
}

// RegistryOption mutates a registry fixture.
type RegistryOption func(*lookup.Registry)

// WithEntries sets the registry's entries, adjusting len and capacity.
func WithEntries(entries ...lookup.Entry) RegistryOption {
	return func(registry *lookup.Registry) {
		registry.Entries = entries
		registry.Len = uint8(len(entries))
		registry.Capacity = uint8(len(entries))
	}
}

// WithAuthority sets the registry's authority and matching seed.
func WithAuthority(authority lookup.Address) RegistryOption {
	return func(registry *lookup.Registry) {
		_, seed := lookup.DeriveRegistryAddress(authority)
		registry.Authority = authority
		registry.Seed = seed
	}
}

// RegistryFixture returns a registry for a random authority, empty unless
// options add entries.
func RegistryFixture(options ...RegistryOption) *lookup.Registry {
	authority := AddressFixture()
	_, seed := lookup.DeriveRegistryAddress(authority)
	registry := &lookup.Registry{
		Authority: authority,
		Version:   1,
		Seed:      seed,
	}
	for _, option := range options {
		option(registry)
	}
	return registry
}

// TableAccountFixture returns an active lookup table holding n random
// addresses.
func TableAccountFixture(n int) *lookup.TableAccount {
	authority := AddressFixture()
	return &lookup.TableAccount{
		Key: AddressFixture(),
		Meta: lookup.TableMeta{
			DeactivationSlot: ^uint64(0),
			LastExtendedSlot: 100,
			Authority:        &authority,
		},
		Addresses: AddressesFixture(n),
	}
}

// SnapshotFixture returns a registry snapshot with the given tables.
func SnapshotFixture(authority lookup.Address, tables ...lookup.SnapshotTable) *lookup.Snapshot {
	return &lookup.Snapshot{
		Authority: authority,
		Version:   1,
		Tables:    tables,
	}
}

// SnapshotTableFixture returns a snapshot table holding the given addresses.
func SnapshotTableFixture(addresses ...lookup.Address) lookup.SnapshotTable {
	return lookup.SnapshotTable{
		Discriminator: lookup.DiscriminatorDeactivated + 1,
		TableAddress:  AddressFixture(),
		Addresses:     addresses,
	}
}
