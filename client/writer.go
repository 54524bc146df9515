package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/solworks/lookup-registry/model/lookup"
)

const (
	confirmInterval = time.Second
	confirmAttempts = 30
)

// SubmitClient is the transport surface the writer needs: account reads
// plus transaction submission.
type SubmitClient interface {
	AccountReader

	// GetSlot returns the current slot.
	GetSlot(ctx context.Context) (uint64, error)

	// GetLatestBlockhash returns a recent blockhash for signing.
	GetLatestBlockhash(ctx context.Context) ([32]byte, error)

	// SendTransaction submits a signed transaction and returns its
	// signature.
	SendTransaction(ctx context.Context, signed []byte, skipPreflight bool) (string, error)

	// ConfirmTransaction reports whether the transaction has been
	// finalized.
	ConfirmTransaction(ctx context.Context, signature string) (bool, error)
}

// Writer creates and updates one authority's registry by composing mutation
// instructions with signing and submission. It is intentionally thin: all
// state-machine validation happens on-chain.
type Writer struct {
	rpc             SubmitClient
	builder         *InstructionBuilder
	registryAddress lookup.Address
	log             zerolog.Logger
}

// NewWriter creates a writer without checking whether the registry exists.
func NewWriter(rpc SubmitClient, authority, payer lookup.Address, log zerolog.Logger) *Writer {
	builder := NewInstructionBuilder(authority, payer)
	return &Writer{
		rpc:             rpc,
		builder:         builder,
		registryAddress: builder.RegistryAddress(),
		log:             log.With().Str("component", "registry_writer").Logger(),
	}
}

// NewOrCreateWriter creates a writer, initializing the registry account if
// it does not exist yet.
func NewOrCreateWriter(ctx context.Context, rpc SubmitClient, authority, payer lookup.Address, signer Signer, log zerolog.Logger) (*Writer, error) {
	w := NewWriter(rpc, authority, payer, log)

	// A connection error here would also affect creating the registry, so
	// any read failure is treated as "does not exist yet".
	if _, err := rpc.GetAccount(ctx, w.registryAddress); err == nil {
		return w, nil
	}

	if _, err := w.submit(ctx, []lookup.Instruction{w.builder.InitRegistry()}, signer, false); err != nil {
		return nil, fmt.Errorf("could not initialize registry: %w", err)
	}
	return w, nil
}

// GetRegistry returns the registry account's current state.
// Expected errors: lookup.ErrRegistryNotFound if it has not been created.
func (w *Writer) GetRegistry(ctx context.Context) (*lookup.Registry, error) {
	data, err := w.rpc.GetAccount(ctx, w.registryAddress)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return nil, fmt.Errorf("registry %s: %w", w.registryAddress, lookup.ErrRegistryNotFound)
		}
		return nil, fmt.Errorf("could not read registry %s: %w", w.registryAddress, err)
	}
	registry, err := lookup.DecodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode registry %s: %w", w.registryAddress, err)
	}
	return registry, nil
}

// FindTableAddresses returns the registry's table addresses with the given
// discriminator.
func (w *Writer) FindTableAddresses(ctx context.Context, discriminator lookup.Discriminator) ([]lookup.Address, error) {
	registry, err := w.GetRegistry(ctx)
	if err != nil {
		return nil, err
	}
	var addresses []lookup.Address
	for _, entry := range registry.Entries {
		if entry.Discriminator == discriminator {
			addresses = append(addresses, entry.Table)
		}
	}
	return addresses, nil
}

// GetTable returns one lookup table in the registry together with its
// registry entry.
// Expected errors: lookup.ErrInvalidArgument if either account is missing
// or the registry does not own the table.
func (w *Writer) GetTable(ctx context.Context, table lookup.Address) (lookup.Entry, *lookup.TableAccount, error) {
	accounts, err := w.rpc.GetMultipleAccounts(ctx, []lookup.Address{w.registryAddress, table})
	if err != nil {
		return lookup.Entry{}, nil, fmt.Errorf("could not read accounts: %w", err)
	}
	if len(accounts) != 2 || accounts[0] == nil || accounts[1] == nil {
		return lookup.Entry{}, nil, fmt.Errorf("registry account or lookup table not found: %w", lookup.ErrInvalidArgument)
	}

	registry, err := lookup.DecodeRegistry(accounts[0])
	if err != nil {
		return lookup.Entry{}, nil, fmt.Errorf("could not decode registry: %w", err)
	}
	entry, ok := registry.FindEntry(table)
	if !ok {
		return lookup.Entry{}, nil, fmt.Errorf("registry does not own lookup table %s: %w", table, lookup.ErrInvalidArgument)
	}

	account, err := lookup.DecodeTable(table, accounts[1])
	if err != nil {
		return lookup.Entry{}, nil, fmt.Errorf("could not decode lookup table %s: %w", table, err)
	}
	return *entry, account, nil
}

// CreateTable creates a new lookup table in the registry against the
// current slot and returns its address and the slot used.
func (w *Writer) CreateTable(ctx context.Context, signer Signer, discriminator uint64) (lookup.Address, uint64, error) {
	recentSlot, err := w.rpc.GetSlot(ctx)
	if err != nil {
		return lookup.ZeroAddress, 0, fmt.Errorf("could not get recent slot: %w", err)
	}

	ix, table := w.builder.CreateTable(recentSlot, discriminator)
	if _, err := w.submit(ctx, []lookup.Instruction{ix}, signer, true); err != nil {
		return lookup.ZeroAddress, 0, err
	}
	return table, recentSlot, nil
}

// AppendAddresses extends a lookup table, first filtering out addresses the
// table already holds so no storage is wasted on duplicates.
func (w *Writer) AppendAddresses(ctx context.Context, table lookup.Address, addresses []lookup.Address, signer Signer) error {
	entry, account, err := w.GetTable(ctx, table)
	if err != nil {
		return err
	}

	seen := make(map[lookup.Address]struct{}, len(account.Addresses)+len(addresses))
	for _, existing := range account.Addresses {
		seen[existing] = struct{}{}
	}
	var distinct []lookup.Address
	for _, address := range addresses {
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		distinct = append(distinct, address)
	}

	ix := w.builder.AppendToTable(table, distinct, uint64(entry.Discriminator))
	if _, err := w.submit(ctx, []lookup.Instruction{ix}, signer, true); err != nil {
		return err
	}
	return nil
}

// RemoveTable deactivates an active lookup table, or closes one that is
// already deactivated. Closing fails while the cool-down period has not
// elapsed; call the method again later to finish the deletion.
func (w *Writer) RemoveTable(ctx context.Context, table lookup.Address, signer Signer) error {
	ix := w.builder.RemoveTable(table)
	_, err := w.submit(ctx, []lookup.Instruction{ix}, signer, true)
	return err
}

func (w *Writer) submit(ctx context.Context, instructions []lookup.Instruction, signer Signer, confirm bool) (string, error) {
	blockhash, err := w.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("could not get recent blockhash: %w", err)
	}

	signed, err := BuildTransaction(w.builder.Payer, instructions, blockhash, signer)
	if err != nil {
		return "", fmt.Errorf("could not build transaction: %w", err)
	}

	signature, err := w.rpc.SendTransaction(ctx, signed, true)
	if err != nil {
		return "", fmt.Errorf("could not send transaction: %w", err)
	}
	w.log.Debug().Str("signature", signature).Msg("transaction submitted")

	if !confirm {
		return signature, nil
	}

	backoff := retry.WithMaxRetries(confirmAttempts, retry.NewConstant(confirmInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		confirmed, err := w.rpc.ConfirmTransaction(ctx, signature)
		if err != nil {
			return err
		}
		if !confirmed {
			return retry.RetryableError(fmt.Errorf("transaction %s not yet finalized", signature))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("could not confirm transaction %s: %w", signature, err)
	}

	return signature, nil
}
