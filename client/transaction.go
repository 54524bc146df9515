package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/solworks/lookup-registry/model/lookup"
)

// Signer signs transaction messages on behalf of one key.
type Signer interface {
	PublicKey() lookup.Address
	Sign(message []byte) ([]byte, error)
}

// KeypairSigner signs with an in-memory ed25519 keypair.
type KeypairSigner struct {
	private ed25519.PrivateKey
	public  lookup.Address
}

var _ Signer = (*KeypairSigner)(nil)

func NewKeypairSigner(private ed25519.PrivateKey) *KeypairSigner {
	return &KeypairSigner{
		private: private,
		public:  lookup.BytesToAddress(private.Public().(ed25519.PublicKey)),
	}
}

// GenerateKeypairSigner creates a signer with a fresh random keypair.
func GenerateKeypairSigner() (*KeypairSigner, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("could not generate keypair: %w", err)
	}
	return NewKeypairSigner(private), nil
}

func (s *KeypairSigner) PublicKey() lookup.Address {
	return s.public
}

func (s *KeypairSigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.private, message), nil
}

// compiledMessage is a serialized legacy transaction message together with
// the account table it was compiled against.
type compiledMessage struct {
	accountKeys           []lookup.Address
	requiredSignatures    int
	readonlySignedCount   int
	readonlyUnsignedCount int
	data                  []byte
}

type compiledAccount struct {
	address  lookup.Address
	signer   bool
	writable bool
}

// compileMessage flattens instructions into the legacy wire message format:
// deduplicated account table ordered writable-signers, readonly-signers,
// writable-non-signers, readonly-non-signers (fee payer first), followed by
// the per-instruction account index lists.
func compileMessage(payer lookup.Address, instructions []lookup.Instruction, recentBlockhash [32]byte) (*compiledMessage, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("no instructions to compile: %w", lookup.ErrInvalidArgument)
	}

	accounts := []compiledAccount{{address: payer, signer: true, writable: true}}
	upsert := func(address lookup.Address, signer, writable bool) {
		for i := range accounts {
			if accounts[i].address == address {
				accounts[i].signer = accounts[i].signer || signer
				accounts[i].writable = accounts[i].writable || writable
				return
			}
		}
		accounts = append(accounts, compiledAccount{address: address, signer: signer, writable: writable})
	}
	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			upsert(meta.Pubkey, meta.IsSigner, meta.IsWritable)
		}
		upsert(ix.ProgramID, false, false)
	}

	// Stable partition into the four account classes; the payer stays first.
	var ordered []compiledAccount
	for _, class := range []struct{ signer, writable bool }{
		{true, true}, {true, false}, {false, true}, {false, false},
	} {
		for _, account := range accounts {
			if account.signer == class.signer && account.writable == class.writable {
				ordered = append(ordered, account)
			}
		}
	}

	msg := &compiledMessage{
		accountKeys: make([]lookup.Address, len(ordered)),
	}
	indexOf := make(map[lookup.Address]int, len(ordered))
	for i, account := range ordered {
		msg.accountKeys[i] = account.address
		indexOf[account.address] = i
		if account.signer {
			msg.requiredSignatures++
			if !account.writable {
				msg.readonlySignedCount++
			}
		} else if !account.writable {
			msg.readonlyUnsignedCount++
		}
	}

	data := []byte{
		byte(msg.requiredSignatures),
		byte(msg.readonlySignedCount),
		byte(msg.readonlyUnsignedCount),
	}
	data = appendShortVecLen(data, len(msg.accountKeys))
	for _, key := range msg.accountKeys {
		data = append(data, key.Bytes()...)
	}
	data = append(data, recentBlockhash[:]...)
	data = appendShortVecLen(data, len(instructions))
	for _, ix := range instructions {
		data = append(data, byte(indexOf[ix.ProgramID]))
		data = appendShortVecLen(data, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			data = append(data, byte(indexOf[meta.Pubkey]))
		}
		data = appendShortVecLen(data, len(ix.Data))
		data = append(data, ix.Data...)
	}
	msg.data = data

	return msg, nil
}

// BuildTransaction compiles and signs a legacy transaction. Every required
// signer account must be covered by one of the provided signers.
func BuildTransaction(payer lookup.Address, instructions []lookup.Instruction, recentBlockhash [32]byte, signers ...Signer) ([]byte, error) {
	msg, err := compileMessage(payer, instructions, recentBlockhash)
	if err != nil {
		return nil, err
	}

	tx := appendShortVecLen(nil, msg.requiredSignatures)
	for i := 0; i < msg.requiredSignatures; i++ {
		account := msg.accountKeys[i]
		var signature []byte
		for _, signer := range signers {
			if signer.PublicKey() == account {
				signature, err = signer.Sign(msg.data)
				if err != nil {
					return nil, fmt.Errorf("could not sign for %s: %w", account, err)
				}
				break
			}
		}
		if signature == nil {
			return nil, fmt.Errorf("no signer for required account %s: %w", account, lookup.ErrInvalidArgument)
		}
		tx = append(tx, signature...)
	}
	tx = append(tx, msg.data...)

	return tx, nil
}

// appendShortVecLen appends a compact-u16 length prefix.
func appendShortVecLen(data []byte, length int) []byte {
	value := uint16(length)
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value == 0 {
			return append(data, b)
		}
		data = append(data, b|0x80)
	}
}
