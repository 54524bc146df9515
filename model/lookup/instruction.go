package lookup

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Pubkey     Address
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation: the target program and the
// ordered accounts it references, plus opaque input data.
type Instruction struct {
	ProgramID Address
	Accounts  []AccountMeta
	Data      []byte
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(pubkey Address, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(pubkey Address, isSigner bool) AccountMeta {
	return AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: false}
}
