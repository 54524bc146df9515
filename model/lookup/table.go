package lookup

const (
	// TableMetaSize is the fixed size of the lookup table account metadata
	// header. Addresses are always stored starting at this offset, even
	// when the serialized metadata is shorter.
	TableMetaSize = 56

	// MaxTableAddresses is the maximum number of addresses one lookup table
	// can store.
	MaxTableAddresses = 256
)

// TableMeta is the metadata header of a lookup table account.
type TableMeta struct {
	// DeactivationSlot is the slot the table was deactivated in, or
	// MaxUint64 while the table is still active.
	DeactivationSlot uint64
	// LastExtendedSlot is the slot the table was last extended in.
	LastExtendedSlot uint64
	// LastExtendedSlotStartIndex is the index of the first address appended
	// during the last extension.
	LastExtendedSlotStartIndex uint8
	// Authority may deactivate, extend and close the table. A table with no
	// authority is frozen.
	Authority *Address
	// Padding preserves the on-chain alignment bytes.
	Padding uint16
}

// TableAccount is a decoded lookup table account: the metadata header plus
// the ordered list of member addresses. Duplicates are meaningful and are
// not removed.
type TableAccount struct {
	// Key is the address of the table account itself.
	Key Address
	// Meta is the decoded metadata header.
	Meta TableMeta
	// Addresses is the ordered list of member addresses.
	Addresses []Address
}
