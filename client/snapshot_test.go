package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/utils/unittest"
)

func TestFetchSnapshot(t *testing.T) {
	rpc := newFakeAccountReader()
	authority := unittest.AddressFixture()
	table1 := unittest.TableAccountFixture(3)
	table2 := unittest.TableAccountFixture(5)
	rpc.serveRegistry(authority, table1, table2)

	snapshot, err := FetchSnapshot(context.Background(), rpc, authority)
	require.NoError(t, err)
	assert.Equal(t, authority, snapshot.Authority)
	require.Len(t, snapshot.Tables, 2)
	assert.Equal(t, table1.Addresses, snapshot.Tables[0].Addresses)
	assert.Equal(t, table2.Addresses, snapshot.Tables[1].Addresses)
}

func TestFetchSnapshot_RegistryNotFound(t *testing.T) {
	_, err := FetchSnapshot(context.Background(), newFakeAccountReader(), unittest.AddressFixture())
	assert.ErrorIs(t, err, lookup.ErrRegistryNotFound)
}

func TestFetchSnapshot_InvalidRegistry(t *testing.T) {
	rpc := newFakeAccountReader()
	authority := unittest.AddressFixture()
	registryAddress, _ := lookup.DeriveRegistryAddress(authority)
	rpc.accounts[registryAddress] = []byte{1, 2, 3}

	_, err := FetchSnapshot(context.Background(), rpc, authority)
	assert.ErrorIs(t, err, lookup.ErrInvalidAccountData)
}

// Missing or undecodable table accounts are dropped from the snapshot; the
// remaining tables still resolve.
func TestFetchSnapshot_PartialTables(t *testing.T) {
	rpc := newFakeAccountReader()
	authority := unittest.AddressFixture()
	missing := unittest.TableAccountFixture(2)
	corrupt := unittest.TableAccountFixture(2)
	healthy := unittest.TableAccountFixture(4)
	rpc.serveRegistry(authority, missing, corrupt, healthy)

	delete(rpc.accounts, missing.Key)
	rpc.accounts[corrupt.Key] = make([]byte, lookup.TableMetaSize) // uninitialized marker

	snapshot, err := FetchSnapshot(context.Background(), rpc, authority)
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 1)
	assert.Equal(t, healthy.Key, snapshot.Tables[0].TableAddress)
}

// Deactivated and empty entries do not contribute tables.
func TestFetchSnapshot_OnlyActiveEntries(t *testing.T) {
	rpc := newFakeAccountReader()
	authority := unittest.AddressFixture()
	active := unittest.TableAccountFixture(2)
	deactivated := unittest.TableAccountFixture(2)
	registry := rpc.serveRegistry(authority, active, deactivated)

	registry.Entries[1].Discriminator = lookup.DiscriminatorDeactivated
	registryAddress, _ := lookup.DeriveRegistryAddress(authority)
	rpc.accounts[registryAddress] = lookup.EncodeRegistry(registry)

	snapshot, err := FetchSnapshot(context.Background(), rpc, authority)
	require.NoError(t, err)
	require.Len(t, snapshot.Tables, 1)
	assert.Equal(t, active.Key, snapshot.Tables[0].TableAddress)
}
