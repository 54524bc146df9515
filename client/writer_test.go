package client

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/utils/unittest"
)

// fakeSubmitClient extends the fake account reader with transaction
// submission, recording every sent transaction.
type fakeSubmitClient struct {
	*fakeAccountReader
	slot          uint64
	sent          [][]byte
	confirmAfter  int
	confirmations int
}

func newFakeSubmitClient() *fakeSubmitClient {
	return &fakeSubmitClient{fakeAccountReader: newFakeAccountReader(), slot: 100}
}

func (f *fakeSubmitClient) GetSlot(context.Context) (uint64, error) {
	return f.slot, nil
}

func (f *fakeSubmitClient) GetLatestBlockhash(context.Context) ([32]byte, error) {
	return [32]byte{1}, nil
}

func (f *fakeSubmitClient) SendTransaction(_ context.Context, signed []byte, _ bool) (string, error) {
	f.sent = append(f.sent, signed)
	return fmt.Sprintf("sig-%d", len(f.sent)), nil
}

func (f *fakeSubmitClient) ConfirmTransaction(context.Context, string) (bool, error) {
	f.confirmations++
	return f.confirmations > f.confirmAfter, nil
}

func TestNewOrCreateWriter(t *testing.T) {
	rpc := newFakeSubmitClient()
	signer, err := GenerateKeypairSigner()
	require.NoError(t, err)
	authority := signer.PublicKey()
	ctx := context.Background()

	// no registry account yet: an init transaction is submitted
	w, err := NewOrCreateWriter(ctx, rpc, authority, authority, signer, unittest.Logger())
	require.NoError(t, err)
	require.Len(t, rpc.sent, 1)

	// with the registry served, no new init is submitted
	rpc.serveRegistry(authority)
	_, err = NewOrCreateWriter(ctx, rpc, authority, authority, signer, unittest.Logger())
	require.NoError(t, err)
	assert.Len(t, rpc.sent, 1)

	_, err = w.GetRegistry(ctx)
	require.NoError(t, err)
}

func TestWriterGetRegistry_Missing(t *testing.T) {
	rpc := newFakeSubmitClient()
	w := NewWriter(rpc, unittest.AddressFixture(), unittest.AddressFixture(), unittest.Logger())

	_, err := w.GetRegistry(context.Background())
	assert.ErrorIs(t, err, lookup.ErrRegistryNotFound)
}

func TestWriterCreateTable(t *testing.T) {
	rpc := newFakeSubmitClient()
	signer, err := GenerateKeypairSigner()
	require.NoError(t, err)
	authority := signer.PublicKey()
	rpc.serveRegistry(authority)

	w := NewWriter(rpc, authority, authority, unittest.Logger())
	table, slot, err := w.CreateTable(context.Background(), signer, 0)
	require.NoError(t, err)
	assert.Equal(t, rpc.slot, slot)

	expected, _ := lookup.DeriveTableAddress(authority, rpc.slot)
	assert.Equal(t, expected, table)
	assert.Len(t, rpc.sent, 1)
}

func TestWriterGetTable(t *testing.T) {
	rpc := newFakeSubmitClient()
	authority := unittest.AddressFixture()
	table := unittest.TableAccountFixture(3)
	rpc.serveRegistry(authority, table)

	w := NewWriter(rpc, authority, authority, unittest.Logger())
	ctx := context.Background()

	entry, account, err := w.GetTable(ctx, table.Key)
	require.NoError(t, err)
	assert.True(t, entry.Discriminator.IsActive())
	assert.Equal(t, table.Addresses, account.Addresses)

	// a table the registry does not own is rejected
	foreign := unittest.TableAccountFixture(1)
	rpc.accounts[foreign.Key] = lookup.EncodeTable(foreign)
	_, _, err = w.GetTable(ctx, foreign.Key)
	assert.ErrorIs(t, err, lookup.ErrInvalidArgument)

	// a missing table account is rejected
	_, _, err = w.GetTable(ctx, unittest.AddressFixture())
	assert.ErrorIs(t, err, lookup.ErrInvalidArgument)
}

// Appending filters out addresses the table already holds, keeping the first
// occurrence order of the remainder.
func TestWriterAppendAddresses_FiltersExisting(t *testing.T) {
	rpc := newFakeSubmitClient()
	signer, err := GenerateKeypairSigner()
	require.NoError(t, err)
	authority := signer.PublicKey()
	table := unittest.TableAccountFixture(3)
	rpc.serveRegistry(authority, table)

	w := NewWriter(rpc, authority, authority, unittest.Logger())

	fresh := unittest.AddressesFixture(2)
	mixed := []lookup.Address{table.Addresses[0], fresh[0], table.Addresses[1], fresh[1], fresh[0]}
	require.NoError(t, w.AppendAddresses(context.Background(), table.Key, mixed, signer))

	require.Len(t, rpc.sent, 1)
	assert.Equal(t, fresh, appendedAddresses(t, rpc.sent[0]))
}

// appendedAddresses extracts the address vector of the append instruction
// embedded in a signed transaction.
func appendedAddresses(t *testing.T, signed []byte) []lookup.Address {
	t.Helper()
	prefix := methodDiscriminator("append_to_lookup_table")
	start := bytes.Index(signed, prefix)
	require.NotEqual(t, -1, start)

	count := binary.LittleEndian.Uint32(signed[start+8 : start+12])
	addresses := make([]lookup.Address, count)
	for i := range addresses {
		offset := start + 12 + i*lookup.AddressLength
		addresses[i] = lookup.BytesToAddress(signed[offset : offset+lookup.AddressLength])
	}
	return addresses
}

func TestWriterRemoveTable(t *testing.T) {
	rpc := newFakeSubmitClient()
	signer, err := GenerateKeypairSigner()
	require.NoError(t, err)
	authority := signer.PublicKey()
	table := unittest.TableAccountFixture(1)
	rpc.serveRegistry(authority, table)

	w := NewWriter(rpc, authority, authority, unittest.Logger())
	require.NoError(t, w.RemoveTable(context.Background(), table.Key, signer))
	assert.Len(t, rpc.sent, 1)
}

func TestWriterSubmit_ConfirmRetries(t *testing.T) {
	rpc := newFakeSubmitClient()
	rpc.confirmAfter = 2
	signer, err := GenerateKeypairSigner()
	require.NoError(t, err)
	authority := signer.PublicKey()
	rpc.serveRegistry(authority)

	w := NewWriter(rpc, authority, authority, unittest.Logger())
	_, _, err = w.CreateTable(context.Background(), signer, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, rpc.confirmations)
}
