package registry

import (
	"github.com/solworks/lookup-registry/model/lookup"
)

// Effect is an external table program call a transition requires. Effects
// are executed by the Store after the transition has been validated; any
// effect failure aborts the whole mutation.
type Effect interface {
	isEffect()
}

// CreateTableEffect creates the lookup table account. The call must yield
// an address equal to Table or the mutation fails with ErrInvalidLookupTable.
type CreateTableEffect struct {
	Authority  lookup.Address
	Payer      lookup.Address
	RecentSlot uint64
	Table      lookup.Address
}

// ExtendTableEffect appends addresses to an existing table.
type ExtendTableEffect struct {
	Authority lookup.Address
	Payer     lookup.Address
	Table     lookup.Address
	Addresses []lookup.Address
}

// DeactivateTableEffect starts the table's cool-down period.
type DeactivateTableEffect struct {
	Authority lookup.Address
	Table     lookup.Address
}

// CloseTableEffect closes a deactivated table. The external program rejects
// the call while the cool-down period has not elapsed; that failure is
// propagated, not retried.
type CloseTableEffect struct {
	Authority lookup.Address
	Recipient lookup.Address
	Table     lookup.Address
}

func (CreateTableEffect) isEffect()     {}
func (ExtendTableEffect) isEffect()     {}
func (DeactivateTableEffect) isEffect() {}
func (CloseTableEffect) isEffect()      {}
