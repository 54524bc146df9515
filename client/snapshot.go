package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/solworks/lookup-registry/model/lookup"
)

// AccountReader fetches raw account bytes by address, singly or batched.
// Implementations are supplied by an external transport.
type AccountReader interface {
	// GetAccount returns the raw data of one account.
	// Expected errors: lookup.ErrNotFound if the account does not exist.
	GetAccount(ctx context.Context, address lookup.Address) ([]byte, error)

	// GetMultipleAccounts returns the raw data of several accounts in one
	// call. Missing accounts yield nil slots, not an error.
	GetMultipleAccounts(ctx context.Context, addresses []lookup.Address) ([][]byte, error)
}

// FetchSnapshot reads and resolves one authority's registry: it decodes the
// registry account, batch-fetches the table accounts of all active entries,
// and drops (silently) any entry whose table account is missing or fails to
// parse. The partial degradation is deliberate: a single bad table must not
// fail the whole snapshot.
func FetchSnapshot(ctx context.Context, reader AccountReader, authority lookup.Address) (*lookup.Snapshot, error) {
	registryAddress, _ := lookup.DeriveRegistryAddress(authority)

	data, err := reader.GetAccount(ctx, registryAddress)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return nil, fmt.Errorf("registry %s does not exist: %w", registryAddress, lookup.ErrRegistryNotFound)
		}
		return nil, fmt.Errorf("could not read registry %s: %w", registryAddress, err)
	}

	registry, err := lookup.DecodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode registry %s: %w", registryAddress, err)
	}

	var entries []lookup.Entry
	var addresses []lookup.Address
	for _, entry := range registry.Entries {
		if entry.Discriminator.IsActive() {
			entries = append(entries, entry)
			addresses = append(addresses, entry.Table)
		}
	}

	snapshot := &lookup.Snapshot{
		Authority: authority,
		Version:   registry.Version,
	}
	if len(addresses) == 0 {
		return snapshot, nil
	}

	accounts, err := reader.GetMultipleAccounts(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("could not read table accounts: %w", err)
	}

	for i, account := range accounts {
		if account == nil {
			continue
		}
		table, err := lookup.DecodeTable(entries[i].Table, account)
		if err != nil {
			continue
		}
		snapshot.Tables = append(snapshot.Tables, lookup.SnapshotTable{
			Discriminator: entries[i].Discriminator,
			TableAddress:  entries[i].Table,
			Addresses:     table.Addresses,
		})
	}

	return snapshot, nil
}
