package lookup

import (
	"errors"
)

var (
	// ErrNotFound is returned when an account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrRegistryNotFound is returned when the registry account for an
	// authority has not been initialized.
	ErrRegistryNotFound = errors.New("registry not found")

	// ErrAlreadyExists is returned when initializing a registry for an
	// authority that already owns one.
	ErrAlreadyExists = errors.New("registry already exists")

	// ErrCapacityExceeded is returned when a registry cannot hold any more
	// entries.
	ErrCapacityExceeded = errors.New("too many entries in the registry")

	// ErrInvalidDiscriminator is returned when an entry's discriminator does
	// not permit the requested operation.
	ErrInvalidDiscriminator = errors.New("invalid discriminator")

	// ErrInvalidLookupTable is returned when a lookup table is not owned by
	// the registry, or does not match its derived address.
	ErrInvalidLookupTable = errors.New("invalid lookup table")

	// ErrInvalidArgument is returned for malformed or unauthorized inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when a registry invariant is violated,
	// e.g. operating on an entry that should not be empty.
	ErrInvalidState = errors.New("registry is in an invalid state")

	// ErrUninitializedAccount is returned when decoding a lookup table
	// account that carries the uninitialized marker.
	ErrUninitializedAccount = errors.New("uninitialized lookup table account")

	// ErrInvalidAccountData is returned when account bytes do not match the
	// expected wire layout.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrTransport is returned for transport-level failures that are not
	// otherwise classified.
	ErrTransport = errors.New("transport failure")
)
