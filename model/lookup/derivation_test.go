package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/utils/unittest"
)

// Known-good vectors produced by external tooling.
func TestDeriveRegistryAddress_Golden(t *testing.T) {
	address, seed := lookup.DeriveRegistryAddress(lookup.ZeroAddress)
	assert.Equal(t, "2sMMXWd3SV1o9Vh1gtvDeHBCrpV3w3AmZhWJhmJnsfiq", address.String())
	assert.Equal(t, uint8(255), seed)
}

func TestDeriveTableAddress_Golden(t *testing.T) {
	address, seed := lookup.DeriveTableAddress(lookup.ZeroAddress, 42)
	assert.Equal(t, "HcKrHbCzJLv9DFB3qXLiS5RrneibGRP9oeBeDRpcBKgA", address.String())
	assert.Equal(t, uint8(255), seed)
}

func TestDeriveRegistryAddress_Deterministic(t *testing.T) {
	authority := unittest.AddressFixture()

	address1, seed1 := lookup.DeriveRegistryAddress(authority)
	address2, seed2 := lookup.DeriveRegistryAddress(authority)
	assert.Equal(t, address1, address2)
	assert.Equal(t, seed1, seed2)

	other, _ := lookup.DeriveRegistryAddress(unittest.AddressFixture())
	assert.NotEqual(t, address1, other)
}

func TestDeriveTableAddress_DistinctPerSlot(t *testing.T) {
	authority := unittest.AddressFixture()

	address1, _ := lookup.DeriveTableAddress(authority, 100)
	address2, _ := lookup.DeriveTableAddress(authority, 101)
	assert.NotEqual(t, address1, address2)
}

// The returned seed must reproduce the same address when fed back into the
// single-shot derivation.
func TestCreateProgramAddress_Reproduces(t *testing.T) {
	authority := unittest.AddressFixture()
	address, seed := lookup.DeriveRegistryAddress(authority)

	reproduced, err := lookup.CreateProgramAddress(
		[][]byte{authority.Bytes()}, seed, lookup.RegistryProgramID)
	require.NoError(t, err)
	assert.Equal(t, address, reproduced)
}
