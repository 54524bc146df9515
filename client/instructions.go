package client

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/solworks/lookup-registry/model/lookup"
)

// InstructionBuilder builds the registry program's mutation instructions.
// It is useful when combining instructions into a larger transaction;
// otherwise use the Writer.
type InstructionBuilder struct {
	// Authority owns the registry.
	Authority lookup.Address
	// Payer covers transaction costs and rent.
	Payer lookup.Address

	registryAddress lookup.Address
}

func NewInstructionBuilder(authority, payer lookup.Address) *InstructionBuilder {
	registryAddress, _ := lookup.DeriveRegistryAddress(authority)
	return &InstructionBuilder{
		Authority:       authority,
		Payer:           payer,
		registryAddress: registryAddress,
	}
}

// RegistryAddress returns the registry account address derived from the
// authority.
func (b *InstructionBuilder) RegistryAddress() lookup.Address {
	return b.registryAddress
}

// InitRegistry returns the instruction to initialize the registry account.
func (b *InstructionBuilder) InitRegistry() lookup.Instruction {
	return lookup.Instruction{
		ProgramID: lookup.RegistryProgramID,
		Accounts: []lookup.AccountMeta{
			lookup.NewReadonlyAccountMeta(b.Authority, true),
			lookup.NewAccountMeta(b.Payer, true),
			lookup.NewAccountMeta(b.registryAddress, false),
			lookup.NewReadonlyAccountMeta(lookup.SystemProgramID, false),
		},
		Data: methodDiscriminator("init_registry_account"),
	}
}

// CreateTable returns the instruction to create a lookup table in the
// registry, together with the table's derived address. The discriminator
// argument is kept for future compatibility and is encoded as zero.
func (b *InstructionBuilder) CreateTable(recentSlot uint64, _ uint64) (lookup.Instruction, lookup.Address) {
	table, _ := lookup.DeriveTableAddress(b.Authority, recentSlot)

	data := methodDiscriminator("create_lookup_table")
	data = binary.LittleEndian.AppendUint64(data, recentSlot)
	data = binary.LittleEndian.AppendUint64(data, 0)

	return lookup.Instruction{
		ProgramID: lookup.RegistryProgramID,
		Accounts: []lookup.AccountMeta{
			lookup.NewReadonlyAccountMeta(b.Authority, true),
			lookup.NewAccountMeta(b.Payer, true),
			lookup.NewAccountMeta(b.registryAddress, false),
			lookup.NewAccountMeta(table, false),
			lookup.NewReadonlyAccountMeta(lookup.TableProgramID, false),
			lookup.NewReadonlyAccountMeta(lookup.SystemProgramID, false),
		},
		Data: data,
	}, table
}

// AppendToTable returns the instruction to append addresses to a lookup
// table. Callers are expected to have filtered the addresses to those not
// already present in the table.
func (b *InstructionBuilder) AppendToTable(table lookup.Address, addresses []lookup.Address, _ uint64) lookup.Instruction {
	data := methodDiscriminator("append_to_lookup_table")
	data = binary.LittleEndian.AppendUint32(data, uint32(len(addresses)))
	for _, address := range addresses {
		data = append(data, address.Bytes()...)
	}
	data = binary.LittleEndian.AppendUint64(data, 0)

	return lookup.Instruction{
		ProgramID: lookup.RegistryProgramID,
		Accounts: []lookup.AccountMeta{
			lookup.NewReadonlyAccountMeta(b.Authority, true),
			lookup.NewAccountMeta(b.Payer, true),
			lookup.NewReadonlyAccountMeta(b.registryAddress, false),
			lookup.NewAccountMeta(table, false),
			lookup.NewReadonlyAccountMeta(lookup.TableProgramID, false),
			lookup.NewReadonlyAccountMeta(lookup.SystemProgramID, false),
		},
		Data: data,
	}
}

// RemoveTable returns the instruction to remove a lookup table, either
// deactivating or closing it depending on its current state.
func (b *InstructionBuilder) RemoveTable(table lookup.Address) lookup.Instruction {
	return lookup.Instruction{
		ProgramID: lookup.RegistryProgramID,
		Accounts: []lookup.AccountMeta{
			lookup.NewReadonlyAccountMeta(b.Authority, true),
			lookup.NewAccountMeta(b.Payer, true),
			lookup.NewAccountMeta(b.registryAddress, false),
			lookup.NewAccountMeta(table, false),
			lookup.NewReadonlyAccountMeta(lookup.TableProgramID, false),
			lookup.NewReadonlyAccountMeta(lookup.SystemProgramID, false),
		},
		Data: methodDiscriminator("remove_lookup_table"),
	}
}

// methodDiscriminator returns the 8 byte method prefix of a registry
// program instruction.
func methodDiscriminator(method string) []byte {
	digest := sha256.Sum256([]byte("global:" + method))
	return digest[:8]
}
