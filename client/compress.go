package client

import (
	"github.com/solworks/lookup-registry/model/lookup"
)

// FindResult is the outcome of one compression pass.
type FindResult struct {
	// Matches holds the chosen table addresses in authority-then-table
	// iteration order. Duplicate table addresses are not deduplicated;
	// authorities are assumed to own disjoint tables.
	Matches []lookup.Address
	// Distinct is the number of distinct accounts referenced before
	// compression.
	Distinct int
	// Unmatched is the number of distinct accounts no chosen table covers.
	Unmatched int
}

// Compress greedily selects lookup tables so that as many of the accounts
// referenced by the instructions as possible are covered by a table.
//
// The pass is single and deterministic: snapshots are consulted in the
// given order, tables within a snapshot in stored order, and once a table
// claims addresses later tables cannot reclaim them. A table is only worth
// referencing if it covers more than one remaining address; the fixed cost
// of the table reference is not offset by a single match. This is a
// heuristic, not an optimal set cover, and callers depend on its exact
// output shape.
func Compress(instructions []lookup.Instruction, snapshots []*lookup.Snapshot) FindResult {
	remaining := make(map[lookup.Address]struct{}, 256)
	for _, ix := range instructions {
		remaining[ix.ProgramID] = struct{}{}
		for _, account := range ix.Accounts {
			remaining[account.Pubkey] = struct{}{}
		}
	}
	distinct := len(remaining)

	var matches []lookup.Address
	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		for _, table := range snapshot.Tables {
			intersection := intersect(table.Addresses, remaining)
			if len(intersection) <= 1 {
				continue
			}
			matches = append(matches, table.TableAddress)
			for address := range intersection {
				delete(remaining, address)
			}
		}
	}

	return FindResult{
		Matches:   matches,
		Distinct:  distinct,
		Unmatched: len(remaining),
	}
}

// intersect computes the overlap between a table's member list and the
// remaining account set, iterating whichever side is smaller and probing
// membership in the other.
func intersect(table []lookup.Address, remaining map[lookup.Address]struct{}) map[lookup.Address]struct{} {
	intersection := make(map[lookup.Address]struct{})
	if len(table) < len(remaining) {
		for _, address := range table {
			if _, ok := remaining[address]; ok {
				intersection[address] = struct{}{}
			}
		}
		return intersection
	}
	for address := range remaining {
		if containsAddress(table, address) {
			intersection[address] = struct{}{}
		}
	}
	return intersection
}

func containsAddress(addresses []lookup.Address, target lookup.Address) bool {
	for _, address := range addresses {
		if address == target {
			return true
		}
	}
	return false
}
