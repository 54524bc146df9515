package lookup

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// Address represents the 32 byte address of an on-chain account.
type Address [AddressLength]byte

const (
	// AddressLength is the size of an account address in bytes.
	AddressLength = 32
)

// ZeroAddress represents the "zero address" (account that no one owns).
var ZeroAddress = Address{}

// BytesToAddress returns an Address with value b.
//
// If b is larger than 32 bytes, b will be cropped from the left.
// If b is smaller than 32 bytes, b will be padded with zeroes at the front.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// AddressFromBase58 parses the canonical base58 string representation of an
// address, as used by external tooling and the HTTP API.
func AddressFromBase58(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("could not decode base58 address: %w", err)
	}
	if len(b) != AddressLength {
		return ZeroAddress, fmt.Errorf("invalid address length: expected %d bytes, got %d", AddressLength, len(b))
	}
	return BytesToAddress(b), nil
}

// MustAddressFromBase58 parses a base58 address and panics on failure.
// Only for use with hard-coded well-known addresses.
func MustAddressFromBase58(s string) Address {
	a, err := AddressFromBase58(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// IsZero returns true if the address is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the base58 string representation of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

func (a *Address) UnmarshalJSON(data []byte) error {
	addr, err := AddressFromBase58(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
