package lookup

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
)

// Well-known program addresses.
var (
	// RegistryProgramID is the lookup table registry program.
	RegistryProgramID = MustAddressFromBase58("LTR8xXcSrEDsCbTWPY4JmJREFdMz4uYh65uajkVjzru")

	// TableProgramID is the address lookup table program.
	TableProgramID = MustAddressFromBase58("AddressLookupTab1e1111111111111111111111111")

	// SystemProgramID is the system program.
	SystemProgramID = MustAddressFromBase58("11111111111111111111111111111111")
)

// pdaMarker is the domain separator appended when hashing derived addresses.
var pdaMarker = []byte("ProgramDerivedAddress")

// DeriveRegistryAddress returns the registry account address for an
// authority, derived from the authority id alone. The derivation is fully
// local, no network round trip is involved.
func DeriveRegistryAddress(authority Address) (Address, uint8) {
	address, seed, err := FindProgramAddress([][]byte{authority.Bytes()}, RegistryProgramID)
	if err != nil {
		// A valid bump exists for any seed set in practice; a failure here
		// means the authority id itself is degenerate.
		panic(fmt.Sprintf("could not derive registry address for %s: %v", authority, err))
	}
	return address, seed
}

// DeriveTableAddress returns the lookup table account address for an
// authority and the reference slot the table was created against.
func DeriveTableAddress(authority Address, recentSlot uint64) (Address, uint8) {
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], recentSlot)
	address, seed, err := FindProgramAddress([][]byte{authority.Bytes(), slotBytes[:]}, TableProgramID)
	if err != nil {
		panic(fmt.Sprintf("could not derive table address for %s at slot %d: %v", authority, recentSlot, err))
	}
	return address, seed
}

// FindProgramAddress searches bump seeds from 255 downwards for the first
// derived address that does not lie on the ed25519 curve, returning the
// address and the bump seed used.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		address, err := CreateProgramAddress(seeds, byte(bump), programID)
		if err != nil {
			continue
		}
		return address, uint8(bump), nil
	}
	return ZeroAddress, 0, fmt.Errorf("no viable bump seed found: %w", ErrInvalidArgument)
}

// CreateProgramAddress derives an address from seeds, a bump seed, and a
// program id. It fails if the result is a valid curve point, since derived
// addresses must have no associated private key.
func CreateProgramAddress(seeds [][]byte, bump byte, programID Address) (Address, error) {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(programID.Bytes())
	h.Write(pdaMarker)
	digest := h.Sum(nil)

	if isOnCurve(digest) {
		return ZeroAddress, fmt.Errorf("derived address lies on the curve: %w", ErrInvalidArgument)
	}
	return BytesToAddress(digest), nil
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
