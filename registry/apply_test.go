package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/solworks/lookup-registry/model/lookup"
	"github.com/solworks/lookup-registry/registry"
	"github.com/solworks/lookup-registry/utils/unittest"
)

func TestApplyInit(t *testing.T) {
	owner := unittest.AddressFixture()
	cmd := registry.InitRegistry{Owner: owner, Payer: unittest.AddressFixture(), RecentSlot: 10}

	next, effects, err := registry.Apply(nil, cmd)
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, owner, next.Authority)
	assert.Equal(t, uint8(0), next.Len)
	assert.Equal(t, uint8(0), next.Capacity)
	assert.Equal(t, uint64(10), next.LastCreatedSlot)

	_, expectedSeed := lookup.DeriveRegistryAddress(owner)
	assert.Equal(t, expectedSeed, next.Seed)

	// initializing twice is rejected
	_, _, err = registry.Apply(next, cmd)
	assert.ErrorIs(t, err, lookup.ErrAlreadyExists)
}

func TestApplyCreate(t *testing.T) {
	owner := unittest.AddressFixture()
	payer := unittest.AddressFixture()

	current, _, err := registry.Apply(nil, registry.InitRegistry{Owner: owner, Payer: payer})
	require.NoError(t, err)

	next, effects, err := registry.Apply(current, registry.CreateTable{Owner: owner, Payer: payer, RecentSlot: 50})
	require.NoError(t, err)
	assert.Equal(t, uint8(1), next.Len)
	assert.Equal(t, uint8(1), next.Capacity)
	assert.Equal(t, uint64(50), next.LastCreatedSlot)

	expectedTable, _ := lookup.DeriveTableAddress(owner, 50)
	require.Len(t, effects, 1)
	effect, ok := effects[0].(registry.CreateTableEffect)
	require.True(t, ok)
	assert.Equal(t, expectedTable, effect.Table)

	entry, ok := next.FindEntry(expectedTable)
	require.True(t, ok)
	assert.True(t, entry.Discriminator.IsActive())

	// the input registry is never mutated
	assert.Equal(t, uint8(0), current.Len)
}

func TestApplyCreate_ReusesEmptySlot(t *testing.T) {
	owner := unittest.AddressFixture()

	// two tables, the first fully removed, leaves len 1 capacity 2
	current := buildRegistry(t, owner, 100, 101)
	table1, _ := lookup.DeriveTableAddress(owner, 100)
	current = removeTwice(t, current, owner, table1)
	require.Equal(t, uint8(1), current.Len)
	require.Equal(t, uint8(2), current.Capacity)

	// creating another table reuses the freed slot without growing
	next, _, err := registry.Apply(current, registry.CreateTable{Owner: owner, RecentSlot: 102})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), next.Len)
	assert.Equal(t, uint8(2), next.Capacity)

	table3, _ := lookup.DeriveTableAddress(owner, 102)
	assert.Equal(t, table3, next.Entries[0].Table)
}

func TestApplyCreate_CapacityExceeded(t *testing.T) {
	owner := unittest.AddressFixture()
	current := unittest.RegistryFixture(unittest.WithAuthority(owner))
	current.Len = uint8(lookup.MaxRegistryEntries)
	current.Capacity = uint8(lookup.MaxRegistryEntries)
	current.Entries = make([]lookup.Entry, lookup.MaxRegistryEntries)
	for i := range current.Entries {
		current.Entries[i] = unittest.EntryFixture()
	}

	_, _, err := registry.Apply(current, registry.CreateTable{Owner: owner, RecentSlot: 1})
	assert.ErrorIs(t, err, lookup.ErrCapacityExceeded)
}

func TestApplyAppend(t *testing.T) {
	owner := unittest.AddressFixture()
	current := buildRegistry(t, owner, 100)
	table, _ := lookup.DeriveTableAddress(owner, 100)
	addresses := unittest.AddressesFixture(3)

	next, effects, err := registry.Apply(current, registry.AppendAddresses{
		Owner:     owner,
		Table:     table,
		Addresses: addresses,
	})
	require.NoError(t, err)
	assert.Equal(t, current.Len, next.Len)

	require.Len(t, effects, 1)
	effect, ok := effects[0].(registry.ExtendTableEffect)
	require.True(t, ok)
	assert.Equal(t, addresses, effect.Addresses)

	t.Run("unknown table", func(t *testing.T) {
		_, _, err := registry.Apply(current, registry.AppendAddresses{
			Owner: owner,
			Table: unittest.AddressFixture(),
		})
		assert.ErrorIs(t, err, lookup.ErrInvalidLookupTable)
	})

	t.Run("deactivated table", func(t *testing.T) {
		deactivated, _, err := registry.Apply(current, registry.RemoveTable{Owner: owner, Table: table})
		require.NoError(t, err)
		_, _, err = registry.Apply(deactivated, registry.AppendAddresses{Owner: owner, Table: table})
		assert.ErrorIs(t, err, lookup.ErrInvalidDiscriminator)
	})
}

// Removing a table is a two-phase operation: the first command deactivates
// the entry keeping len unchanged, the second frees the slot and decrements
// len. A third command no longer finds the table.
func TestApplyRemove_TwoPhase(t *testing.T) {
	owner := unittest.AddressFixture()
	current := buildRegistry(t, owner, 100)
	table, _ := lookup.DeriveTableAddress(owner, 100)
	cmd := registry.RemoveTable{Owner: owner, Recipient: owner, Table: table}

	// phase one: active -> deactivated
	next, effects, err := registry.Apply(current, cmd)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), next.Len)
	entry, ok := next.FindEntry(table)
	require.True(t, ok)
	assert.Equal(t, lookup.DiscriminatorDeactivated, entry.Discriminator)
	require.Len(t, effects, 1)
	assert.IsType(t, registry.DeactivateTableEffect{}, effects[0])

	// phase two: deactivated -> empty
	next, effects, err = registry.Apply(next, cmd)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), next.Len)
	assert.Equal(t, uint8(1), next.Capacity)
	_, ok = next.FindEntry(table)
	assert.False(t, ok)
	require.Len(t, effects, 1)
	assert.IsType(t, registry.CloseTableEffect{}, effects[0])

	// the freed slot holds the zero address again
	assert.Equal(t, lookup.DiscriminatorEmpty, next.Entries[0].Discriminator)
	assert.Equal(t, lookup.ZeroAddress, next.Entries[0].Table)

	// a third remove no longer finds the table
	_, _, err = registry.Apply(next, cmd)
	assert.ErrorIs(t, err, lookup.ErrInvalidLookupTable)
}

func TestApply_MissingRegistry(t *testing.T) {
	owner := unittest.AddressFixture()

	_, _, err := registry.Apply(nil, registry.CreateTable{Owner: owner})
	assert.ErrorIs(t, err, lookup.ErrRegistryNotFound)

	_, _, err = registry.Apply(nil, registry.AppendAddresses{Owner: owner})
	assert.ErrorIs(t, err, lookup.ErrRegistryNotFound)

	_, _, err = registry.Apply(nil, registry.RemoveTable{Owner: owner})
	assert.ErrorIs(t, err, lookup.ErrRegistryNotFound)
}

// The registry invariant 0 <= len <= capacity <= max must hold after any
// sequence of commands, counting only the successful transitions.
func TestApply_InvariantUnderRandomCommands(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		owner := unittest.AddressFixture()
		current, _, err := registry.Apply(nil, registry.InitRegistry{Owner: owner})
		require.NoError(t, err)

		var tables []lookup.Address
		slot := uint64(0)

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				slot++
				next, _, err := registry.Apply(current, registry.CreateTable{Owner: owner, RecentSlot: slot})
				if err != nil {
					require.ErrorIs(t, err, lookup.ErrCapacityExceeded)
					continue
				}
				table, _ := lookup.DeriveTableAddress(owner, slot)
				tables = append(tables, table)
				current = next
			case 1:
				if len(tables) == 0 {
					continue
				}
				table := tables[rapid.IntRange(0, len(tables)-1).Draw(t, "append_table")]
				next, _, err := registry.Apply(current, registry.AppendAddresses{
					Owner:     owner,
					Table:     table,
					Addresses: unittest.AddressesFixture(2),
				})
				if err == nil {
					current = next
				}
			case 2:
				if len(tables) == 0 {
					continue
				}
				table := tables[rapid.IntRange(0, len(tables)-1).Draw(t, "remove_table")]
				next, _, err := registry.Apply(current, registry.RemoveTable{Owner: owner, Recipient: owner, Table: table})
				if err == nil {
					current = next
				}
			}

			require.LessOrEqual(t, current.Len, current.Capacity)
			require.LessOrEqual(t, int(current.Capacity), lookup.MaxRegistryEntries)
			require.Len(t, current.Entries, int(current.Capacity))

			populated := uint8(0)
			for _, entry := range current.Entries {
				if entry.Discriminator != lookup.DiscriminatorEmpty {
					populated++
				}
			}
			require.Equal(t, current.Len, populated)
		}
	})
}

func buildRegistry(t *testing.T, owner lookup.Address, slots ...uint64) *lookup.Registry {
	t.Helper()
	current, _, err := registry.Apply(nil, registry.InitRegistry{Owner: owner})
	require.NoError(t, err)
	for _, slot := range slots {
		current, _, err = registry.Apply(current, registry.CreateTable{Owner: owner, RecentSlot: slot})
		require.NoError(t, err)
	}
	return current
}

func removeTwice(t *testing.T, current *lookup.Registry, owner, table lookup.Address) *lookup.Registry {
	t.Helper()
	cmd := registry.RemoveTable{Owner: owner, Recipient: owner, Table: table}
	next, _, err := registry.Apply(current, cmd)
	require.NoError(t, err)
	next, _, err = registry.Apply(next, cmd)
	require.NoError(t, err)
	return next
}
