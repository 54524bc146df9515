package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/solworks/lookup-registry/model/lookup"
)

// TableProgram is the external address lookup table program. Implementations
// perform the actual account-level work; the store only validates and
// sequences the calls.
type TableProgram interface {
	// CreateTable creates a table for the authority against the given slot
	// and returns the created table's address.
	CreateTable(ctx context.Context, authority, payer lookup.Address, recentSlot uint64) (lookup.Address, error)

	// ExtendTable appends addresses to a table.
	ExtendTable(ctx context.Context, table, authority, payer lookup.Address, addresses []lookup.Address) error

	// DeactivateTable starts a table's cool-down period.
	DeactivateTable(ctx context.Context, table, authority lookup.Address) error

	// CloseTable closes a deactivated table, crediting the recipient.
	// Expected errors: the program rejects the call while the cool-down
	// period has not elapsed.
	CloseTable(ctx context.Context, table, authority, recipient lookup.Address) error
}

// Store executes registry mutation commands: it loads the authority's
// current registry, applies the pure transition, issues the required table
// program calls, and persists the new state only if everything succeeded.
// No partial writes are ever observable.
type Store struct {
	ledger  Ledger
	program TableProgram
	log     zerolog.Logger
}

func NewStore(ledger Ledger, program TableProgram, log zerolog.Logger) *Store {
	return &Store{
		ledger:  ledger,
		program: program,
		log:     log.With().Str("component", "registry_store").Logger(),
	}
}

// Execute applies one command and returns the resulting registry state.
func (s *Store) Execute(ctx context.Context, cmd Command) (*lookup.Registry, error) {
	authority := cmd.Authority()

	current, err := s.ledger.Registry(authority)
	if err != nil && !errors.Is(err, lookup.ErrRegistryNotFound) {
		return nil, fmt.Errorf("could not load registry for %s: %w", authority, err)
	}
	if _, ok := cmd.(InitRegistry); ok && current != nil {
		return nil, fmt.Errorf("authority %s: %w", authority, lookup.ErrAlreadyExists)
	}

	next, effects, err := Apply(current, cmd)
	if err != nil {
		return nil, err
	}

	for _, effect := range effects {
		if err := s.runEffect(ctx, effect); err != nil {
			return nil, err
		}
	}

	if err := s.ledger.PutRegistry(next); err != nil {
		return nil, fmt.Errorf("could not persist registry for %s: %w", authority, err)
	}

	s.log.Debug().
		Str("authority", authority.String()).
		Uint8("len", next.Len).
		Uint8("capacity", next.Capacity).
		Msgf("applied %T", cmd)

	return next, nil
}

func (s *Store) runEffect(ctx context.Context, effect Effect) error {
	switch effect := effect.(type) {
	case CreateTableEffect:
		table, err := s.program.CreateTable(ctx, effect.Authority, effect.Payer, effect.RecentSlot)
		if err != nil {
			return fmt.Errorf("could not create lookup table: %w", err)
		}
		if table != effect.Table {
			return fmt.Errorf("created table %s does not match derived address %s: %w",
				table, effect.Table, lookup.ErrInvalidLookupTable)
		}
		return nil
	case ExtendTableEffect:
		return s.program.ExtendTable(ctx, effect.Table, effect.Authority, effect.Payer, effect.Addresses)
	case DeactivateTableEffect:
		return s.program.DeactivateTable(ctx, effect.Table, effect.Authority)
	case CloseTableEffect:
		return s.program.CloseTable(ctx, effect.Table, effect.Authority, effect.Recipient)
	default:
		return fmt.Errorf("unknown effect %T: %w", effect, lookup.ErrInvalidArgument)
	}
}
