package registry

import (
	"fmt"

	"github.com/solworks/lookup-registry/model/lookup"
)

// Apply is the pure transition function of the registry state machine. It
// never mutates the input registry: it returns the next registry value and
// the external calls the mutation requires, or a single typed failure.
//
// For InitRegistry the input registry must be nil; for every other command
// it must be the authority's current registry.
func Apply(registry *lookup.Registry, cmd Command) (*lookup.Registry, []Effect, error) {
	switch cmd := cmd.(type) {
	case InitRegistry:
		return applyInit(registry, cmd)
	case CreateTable:
		return applyCreate(registry, cmd)
	case AppendAddresses:
		return applyAppend(registry, cmd)
	case RemoveTable:
		return applyRemove(registry, cmd)
	default:
		return nil, nil, fmt.Errorf("unknown command %T: %w", cmd, lookup.ErrInvalidArgument)
	}
}

func applyInit(registry *lookup.Registry, cmd InitRegistry) (*lookup.Registry, []Effect, error) {
	if registry != nil {
		return nil, nil, fmt.Errorf("authority %s: %w", cmd.Owner, lookup.ErrAlreadyExists)
	}
	_, seed := lookup.DeriveRegistryAddress(cmd.Owner)
	next := &lookup.Registry{
		Authority:       cmd.Owner,
		Version:         0,
		Seed:            seed,
		Len:             0,
		Capacity:        0,
		LastCreatedSlot: cmd.RecentSlot,
		Entries:         []lookup.Entry{},
	}
	return next, nil, nil
}

func applyCreate(registry *lookup.Registry, cmd CreateTable) (*lookup.Registry, []Effect, error) {
	if registry == nil {
		return nil, nil, lookup.ErrRegistryNotFound
	}
	if int(registry.Len) == lookup.MaxRegistryEntries {
		return nil, nil, lookup.ErrCapacityExceeded
	}

	// Every new entry receives the reserved "next" category. The guard is
	// currently unreachable but kept until per-entry categories are assigned.
	discriminator := lookup.DiscriminatorDeactivated + 1
	if discriminator <= lookup.DiscriminatorDeactivated {
		return nil, nil, lookup.ErrInvalidDiscriminator
	}

	table, _ := lookup.DeriveTableAddress(cmd.Owner, cmd.RecentSlot)
	entry := lookup.Entry{
		Discriminator: discriminator,
		Table:         table,
	}

	next := registry.Copy()
	next.LastCreatedSlot = cmd.RecentSlot
	if slot, ok := next.FindEmptySlot(); ok {
		// Reuse a freed slot, the allocation stays as it is.
		next.Entries[slot] = entry
		next.Len++
	} else {
		// Grow the account by exactly one slot; the rent delta for the new
		// slot is transferred from the payer by the execution environment.
		next.Entries = append(next.Entries, entry)
		next.Len++
		next.Capacity++
	}

	if next.Len > next.Capacity {
		return nil, nil, lookup.ErrInvalidState
	}

	effects := []Effect{CreateTableEffect{
		Authority:  cmd.Owner,
		Payer:      cmd.Payer,
		RecentSlot: cmd.RecentSlot,
		Table:      table,
	}}
	return next, effects, nil
}

func applyAppend(registry *lookup.Registry, cmd AppendAddresses) (*lookup.Registry, []Effect, error) {
	if registry == nil {
		return nil, nil, lookup.ErrRegistryNotFound
	}
	entry, ok := registry.FindEntry(cmd.Table)
	if !ok {
		return nil, nil, fmt.Errorf("table %s not in registry: %w", cmd.Table, lookup.ErrInvalidLookupTable)
	}
	if !entry.Discriminator.IsActive() {
		return nil, nil, fmt.Errorf("cannot append to a table that is not active: %w", lookup.ErrInvalidDiscriminator)
	}

	effects := []Effect{ExtendTableEffect{
		Authority: cmd.Owner,
		Payer:     cmd.Payer,
		Table:     cmd.Table,
		Addresses: cmd.Addresses,
	}}
	return registry.Copy(), effects, nil
}

func applyRemove(registry *lookup.Registry, cmd RemoveTable) (*lookup.Registry, []Effect, error) {
	if registry == nil {
		return nil, nil, lookup.ErrRegistryNotFound
	}
	entry, ok := registry.FindEntry(cmd.Table)
	if !ok {
		return nil, nil, fmt.Errorf("table %s not in registry: %w", cmd.Table, lookup.ErrInvalidLookupTable)
	}

	switch entry.Discriminator.Status() {
	case lookup.EntryStatusEmpty:
		// Empty entries hold the zero address and are unreachable through
		// FindEntry for any real table.
		return nil, nil, fmt.Errorf("entry for %s is empty: %w", cmd.Table, lookup.ErrInvalidState)

	case lookup.EntryStatusDeactivated:
		if registry.Len == 0 {
			return nil, nil, lookup.ErrInvalidState
		}
		next := registry.Copy()
		slot, _ := next.FindEntry(cmd.Table)
		slot.Discriminator = lookup.DiscriminatorEmpty
		slot.Table = lookup.ZeroAddress
		next.Len--
		effects := []Effect{CloseTableEffect{
			Authority: cmd.Owner,
			Recipient: cmd.Recipient,
			Table:     cmd.Table,
		}}
		return next, effects, nil

	default:
		next := registry.Copy()
		slot, _ := next.FindEntry(cmd.Table)
		slot.Discriminator = lookup.DiscriminatorDeactivated
		effects := []Effect{DeactivateTableEffect{
			Authority: cmd.Owner,
			Table:     cmd.Table,
		}}
		return next, effects, nil
	}
}
