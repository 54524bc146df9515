package lookup

import (
	"encoding/binary"
	"fmt"
)

// The registry account layout is a fixed 48 byte header followed by
// Capacity packed 40 byte entries:
//
//	authority (32) | version (1) | seed (1) | len (1) | capacity (1) |
//	reserved (4) | last created slot (8, LE)
//	[ discriminator (8, LE) | table address (32) ] * capacity
//
// The lookup table account layout is a 56 byte metadata header followed by
// packed 32 byte addresses:
//
//	state tag (4, LE) | deactivation slot (8, LE) | last extended slot (8, LE) |
//	last extended start index (1) | authority option tag (1) | [authority (32)] |
//	padding (2, LE) | zero fill to 56
//
// Both layouts are dictated by the external chain and must decode bit-exact.

const (
	tableStateUninitialized uint32 = 0
	tableStateLookupTable   uint32 = 1
)

// DecodeRegistry parses a raw registry account into its model form.
func DecodeRegistry(data []byte) (*Registry, error) {
	if len(data) < RegistryHeaderSize {
		return nil, fmt.Errorf("registry account too short (%d bytes): %w", len(data), ErrInvalidAccountData)
	}

	registry := &Registry{
		Authority:       BytesToAddress(data[0:32]),
		Version:         data[32],
		Seed:            data[33],
		Len:             data[34],
		Capacity:        data[35],
		LastCreatedSlot: binary.LittleEndian.Uint64(data[40:48]),
	}

	expected := RegistryHeaderSize + int(registry.Capacity)*RegistryEntrySize
	if len(data) != expected {
		return nil, fmt.Errorf("registry account size mismatch: expected %d bytes for capacity %d, got %d: %w",
			expected, registry.Capacity, len(data), ErrInvalidAccountData)
	}
	if registry.Len > registry.Capacity || int(registry.Capacity) > MaxRegistryEntries {
		return nil, fmt.Errorf("registry length %d exceeds capacity %d (max %d): %w",
			registry.Len, registry.Capacity, MaxRegistryEntries, ErrInvalidAccountData)
	}

	registry.Entries = make([]Entry, registry.Capacity)
	for i := range registry.Entries {
		offset := RegistryHeaderSize + i*RegistryEntrySize
		registry.Entries[i] = Entry{
			Discriminator: Discriminator(binary.LittleEndian.Uint64(data[offset : offset+8])),
			Table:         BytesToAddress(data[offset+8 : offset+RegistryEntrySize]),
		}
	}

	return registry, nil
}

// EncodeRegistry serializes a registry into its account layout.
func EncodeRegistry(registry *Registry) []byte {
	data := make([]byte, RegistryHeaderSize+len(registry.Entries)*RegistryEntrySize)
	copy(data[0:32], registry.Authority.Bytes())
	data[32] = registry.Version
	data[33] = registry.Seed
	data[34] = registry.Len
	data[35] = registry.Capacity
	binary.LittleEndian.PutUint64(data[40:48], registry.LastCreatedSlot)
	for i, entry := range registry.Entries {
		offset := RegistryHeaderSize + i*RegistryEntrySize
		binary.LittleEndian.PutUint64(data[offset:offset+8], uint64(entry.Discriminator))
		copy(data[offset+8:offset+RegistryEntrySize], entry.Table.Bytes())
	}
	return data
}

// DecodeTable parses a raw lookup table account. The uninitialized marker is
// rejected with ErrUninitializedAccount; trailing data that is not a whole
// number of addresses is rejected as invalid.
func DecodeTable(key Address, data []byte) (*TableAccount, error) {
	if len(data) < TableMetaSize {
		return nil, fmt.Errorf("lookup table account too short (%d bytes): %w", len(data), ErrInvalidAccountData)
	}

	switch tag := binary.LittleEndian.Uint32(data[0:4]); tag {
	case tableStateUninitialized:
		return nil, ErrUninitializedAccount
	case tableStateLookupTable:
	default:
		return nil, fmt.Errorf("unknown lookup table state tag %d: %w", tag, ErrInvalidAccountData)
	}

	meta := TableMeta{
		DeactivationSlot:           binary.LittleEndian.Uint64(data[4:12]),
		LastExtendedSlot:           binary.LittleEndian.Uint64(data[12:20]),
		LastExtendedSlotStartIndex: data[20],
	}
	offset := 21
	switch data[offset] {
	case 0:
		offset++
	case 1:
		offset++
		authority := BytesToAddress(data[offset : offset+AddressLength])
		meta.Authority = &authority
		offset += AddressLength
	default:
		return nil, fmt.Errorf("invalid authority option tag %d: %w", data[offset], ErrInvalidAccountData)
	}
	meta.Padding = binary.LittleEndian.Uint16(data[offset : offset+2])

	raw := data[TableMetaSize:]
	if len(raw)%AddressLength != 0 {
		return nil, fmt.Errorf("lookup table addresses misaligned (%d trailing bytes): %w",
			len(raw)%AddressLength, ErrInvalidAccountData)
	}

	addresses := make([]Address, len(raw)/AddressLength)
	for i := range addresses {
		addresses[i] = BytesToAddress(raw[i*AddressLength : (i+1)*AddressLength])
	}

	return &TableAccount{
		Key:       key,
		Meta:      meta,
		Addresses: addresses,
	}, nil
}

// EncodeTable serializes a lookup table account into its account layout.
func EncodeTable(table *TableAccount) []byte {
	data := make([]byte, TableMetaSize+len(table.Addresses)*AddressLength)
	binary.LittleEndian.PutUint32(data[0:4], tableStateLookupTable)
	binary.LittleEndian.PutUint64(data[4:12], table.Meta.DeactivationSlot)
	binary.LittleEndian.PutUint64(data[12:20], table.Meta.LastExtendedSlot)
	data[20] = table.Meta.LastExtendedSlotStartIndex
	offset := 21
	if table.Meta.Authority != nil {
		data[offset] = 1
		offset++
		copy(data[offset:offset+AddressLength], table.Meta.Authority.Bytes())
		offset += AddressLength
	} else {
		data[offset] = 0
		offset++
	}
	binary.LittleEndian.PutUint16(data[offset:offset+2], table.Meta.Padding)
	for i, address := range table.Addresses {
		copy(data[TableMetaSize+i*AddressLength:], address.Bytes())
	}
	return data
}
