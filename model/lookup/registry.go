package lookup

const (
	// RegistryHeaderSize is the fixed size of the registry account header:
	// authority (32) + version (1) + seed (1) + len (1) + capacity (1) +
	// reserved padding (4) + last created slot (8).
	RegistryHeaderSize = 48

	// RegistryEntrySize is the fixed size of one stored entry:
	// discriminator (8) + table address (32).
	RegistryEntrySize = 40

	// RegistryAccountSize is the total account size budget for a registry.
	RegistryAccountSize = 10240

	// MaxRegistryEntries is the maximum number of entries fitting the
	// account size budget. Each lookup table can store up to 256 addresses,
	// so a full registry references up to 65k addresses.
	MaxRegistryEntries = (RegistryAccountSize - RegistryHeaderSize) / RegistryEntrySize
)

// Discriminator tracks the state (and in future the purpose) of a registry
// entry. Values 0 and 1 are reserved; any greater value marks an active
// entry with that category.
type Discriminator uint64

const (
	// DiscriminatorEmpty marks a slot with no table stored.
	DiscriminatorEmpty Discriminator = 0
	// DiscriminatorDeactivated marks a table that has been deactivated and
	// can be closed in a future slot.
	DiscriminatorDeactivated Discriminator = 1
)

// EntryStatus is the decoded lifecycle state of an entry.
type EntryStatus uint8

const (
	EntryStatusEmpty EntryStatus = iota
	EntryStatusDeactivated
	EntryStatusActive
)

// Status returns the tagged lifecycle state for the discriminator.
func (d Discriminator) Status() EntryStatus {
	switch d {
	case DiscriminatorEmpty:
		return EntryStatusEmpty
	case DiscriminatorDeactivated:
		return EntryStatusDeactivated
	default:
		return EntryStatusActive
	}
}

// IsActive returns true for any category discriminator.
func (d Discriminator) IsActive() bool {
	return d > DiscriminatorDeactivated
}

// Entry tracks one lookup table and its state within a registry.
type Entry struct {
	// Discriminator identifies the state of the entry.
	Discriminator Discriminator
	// Table is the lookup table address, zero for empty slots.
	Table Address
}

// Registry is the directory of lookup tables created by one authority.
//
// Invariant: 0 <= Len <= Capacity <= MaxRegistryEntries, with Len counting
// the non-empty entries and Capacity the allocated slots.
type Registry struct {
	// Authority owns and signs for changes to the registry.
	Authority Address
	// Version denotes a change in functionality.
	// - 0: initial version with no discriminators
	Version uint8
	// Seed is the bump seed returned when deriving the registry address.
	Seed uint8
	// Len is the number of populated entries in the registry.
	Len uint8
	// Capacity is the number of allocated entry slots, Capacity >= Len.
	Capacity uint8
	// LastCreatedSlot is the slot when the last lookup table was created.
	// Used to prevent an authority creating multiple tables in one slot.
	LastCreatedSlot uint64
	// Entries is the growable list of entry slots, len(Entries) == Capacity.
	Entries []Entry
}

// FindEntry returns the entry referencing the given table address.
func (r *Registry) FindEntry(table Address) (*Entry, bool) {
	for i := range r.Entries {
		if r.Entries[i].Table == table {
			return &r.Entries[i], true
		}
	}
	return nil, false
}

// FindEmptySlot returns the index of the first empty slot, or false if all
// allocated slots are populated.
func (r *Registry) FindEmptySlot() (int, bool) {
	for i := range r.Entries {
		if r.Entries[i].Discriminator == DiscriminatorEmpty {
			return i, true
		}
	}
	return -1, false
}

// ActiveTables returns the table addresses of all active entries, in stored
// order.
func (r *Registry) ActiveTables() []Address {
	var tables []Address
	for _, entry := range r.Entries {
		if entry.Discriminator.IsActive() {
			tables = append(tables, entry.Table)
		}
	}
	return tables
}

// Copy returns a deep copy of the registry. Mutation commands operate on a
// copy so a failed transition never leaves a partially applied state.
func (r *Registry) Copy() *Registry {
	cpy := *r
	cpy.Entries = make([]Entry, len(r.Entries))
	copy(cpy.Entries, r.Entries)
	return &cpy
}
