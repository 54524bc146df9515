package rest

import (
	"fmt"

	"github.com/solworks/lookup-registry/model/lookup"
)

// InstructionRequest is one instruction of a get_addresses request, with the
// program and account addresses base58 encoded.
type InstructionRequest struct {
	Program  string   `json:"program"`
	Accounts []string `json:"accounts"`
}

// GetAddressesRequest asks which cached lookup tables cover the accounts of
// the given instructions. The authorities scope which registries are
// consulted.
type GetAddressesRequest struct {
	Instructions []InstructionRequest `json:"instructions"`
	Authorities  []string             `json:"authorities"`
}

// GetAddressesResponse reports the matched table addresses together with the
// distinct and unmatched account counts of the compression pass.
type GetAddressesResponse struct {
	Addresses         []string `json:"addresses"`
	DistinctAccounts  int      `json:"distinct_accounts"`
	UnmatchedAccounts int      `json:"unmatched_accounts"`
}

// AuthorityAddressesResponse lists the active lookup table addresses of one
// authority's registry.
type AuthorityAddressesResponse struct {
	Authority string   `json:"authority"`
	Addresses []string `json:"addresses"`
}

func (r *GetAddressesRequest) instructions() ([]lookup.Instruction, error) {
	instructions := make([]lookup.Instruction, 0, len(r.Instructions))
	for i, ix := range r.Instructions {
		program, err := lookup.AddressFromBase58(ix.Program)
		if err != nil {
			return nil, fmt.Errorf("invalid program in instruction %d: %w", i, err)
		}
		metas := make([]lookup.AccountMeta, 0, len(ix.Accounts))
		for _, account := range ix.Accounts {
			pubkey, err := lookup.AddressFromBase58(account)
			if err != nil {
				return nil, fmt.Errorf("invalid account in instruction %d: %w", i, err)
			}
			metas = append(metas, lookup.NewReadonlyAccountMeta(pubkey, false))
		}
		instructions = append(instructions, lookup.Instruction{
			ProgramID: program,
			Accounts:  metas,
		})
	}
	return instructions, nil
}

func (r *GetAddressesRequest) authorities() ([]lookup.Address, error) {
	authorities := make([]lookup.Address, 0, len(r.Authorities))
	for _, raw := range r.Authorities {
		authority, err := lookup.AddressFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid authority %q: %w", raw, err)
		}
		authorities = append(authorities, authority)
	}
	return authorities, nil
}

func encodeAddresses(addresses []lookup.Address) []string {
	encoded := make([]string, 0, len(addresses))
	for _, address := range addresses {
		encoded = append(encoded, address.String())
	}
	return encoded
}
