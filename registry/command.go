// Package registry implements the lookup table registry state machine: a
// growable, slot-reusing directory of table entries with a strict
// Empty -> Active -> Deactivated -> Empty lifecycle.
//
// Mutations are expressed as commands applied by the pure transition
// function Apply, which returns the next registry value together with the
// external table program calls the mutation requires. The Store binds the
// transition function to a ledger and a table program and guarantees that a
// mutation either fully applies or fully aborts.
package registry

import (
	"github.com/solworks/lookup-registry/model/lookup"
)

// Command is one registry mutation request, signed by the authority.
type Command interface {
	// Authority returns the registry owner the command targets.
	Authority() lookup.Address
}

// InitRegistry creates an empty registry for an authority. It fails if the
// authority already owns one.
type InitRegistry struct {
	Owner lookup.Address
	Payer lookup.Address
	// RecentSlot is recorded as the registry's creation slot.
	RecentSlot uint64
}

// CreateTable creates a lookup table at the address derived from the
// authority and the recent slot, and records it in the registry.
type CreateTable struct {
	Owner lookup.Address
	Payer lookup.Address
	// RecentSlot is the reference point the table address is derived from.
	RecentSlot uint64
}

// AppendAddresses extends a table owned by the registry. The caller must
// have already filtered the addresses to those not present in the table;
// the store forwards them as given.
type AppendAddresses struct {
	Owner     lookup.Address
	Payer     lookup.Address
	Table     lookup.Address
	Addresses []lookup.Address
}

// RemoveTable deactivates an active table, or closes an already-deactivated
// one. Issuing the command twice is the documented way to fully delete a
// table.
type RemoveTable struct {
	Owner lookup.Address
	// Recipient receives the closed table account's balance.
	Recipient lookup.Address
	Table     lookup.Address
}

func (c InitRegistry) Authority() lookup.Address    { return c.Owner }
func (c CreateTable) Authority() lookup.Address     { return c.Owner }
func (c AppendAddresses) Authority() lookup.Address { return c.Owner }
func (c RemoveTable) Authority() lookup.Address     { return c.Owner }
