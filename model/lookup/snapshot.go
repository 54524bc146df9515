package lookup

// SnapshotTable is one resolved active table inside a snapshot: the
// registry entry's discriminator and address together with the full member
// address list read from the table account.
type SnapshotTable struct {
	Discriminator Discriminator
	TableAddress  Address
	Addresses     []Address
}

// Snapshot is an immutable client-side view of one authority's registry:
// only the active entries, each resolved against its external table
// account. Snapshots are created on fetch and replaced wholesale on
// refresh, never mutated in place.
type Snapshot struct {
	Authority Address
	Version   uint8
	Tables    []SnapshotTable
}

// TableAddresses returns the addresses of the resolved tables in stored
// order.
func (s *Snapshot) TableAddresses() []Address {
	addresses := make([]Address, 0, len(s.Tables))
	for _, table := range s.Tables {
		addresses = append(addresses, table.TableAddress)
	}
	return addresses
}
