// Package database defines the records the ledger keeps and the contract
// required of any package providing durable storage for them.
package database

import (
	"errors"
	"sort"
)

// ErrNotFound is returned when a block or transaction does not exist.
var ErrNotFound = errors.New("not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for persisting and reloading the ledger.
type Storage interface {
	LoadAll() (Snapshot, error)
	CommitBlock(block MinedBlock, txs []SignedTx, accounts []Account) error
	WipeAll() error
	Close() error
}

// Snapshot is the full persisted state of the ledger. Blocks are ordered by
// height and carry their reassembled transaction lists.
type Snapshot struct {
	Accounts     []Account
	Transactions []SignedTx
	Blocks       []MinedBlock
}

// =============================================================================

// AssembleBlocks fills in the transaction list of every block by collecting
// the transactions whose block field matches the block's height. Blocks are
// returned sorted by height.
func AssembleBlocks(blocks []MinedBlock, txs []SignedTx) []MinedBlock {
	ordered := make([]SignedTx, len(txs))
	copy(ordered, txs)
	SortTransactions(ordered)

	members := make(map[uint64][]string)
	for _, tx := range ordered {
		members[tx.Block] = append(members[tx.Block], tx.Hash)
	}

	out := make([]MinedBlock, len(blocks))
	copy(out, blocks)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Height < out[j].Height
	})

	for i := range out {
		out[i].Transactions = members[out[i].Height]
		if out[i].Transactions == nil {
			out[i].Transactions = []string{}
		}
	}

	return out
}

// SortTransactions puts the transactions in the order they are listed inside
// a block. Blocks are mined in this order so reloading them from storage
// gives back the same list and the same hash.
func SortTransactions(txs []SignedTx) {
	sort.Stable(byInclusion(txs))
}

// byInclusion provides sorting support for the order transactions are
// listed inside a reassembled block.
type byInclusion []SignedTx

// Len returns the number of transactions in the list.
func (bi byInclusion) Len() int {
	return len(bi)
}

// Less orders by timestamp, then sender and nonce, then hash so reloading
// the same rows always yields the same list.
func (bi byInclusion) Less(i, j int) bool {
	switch {
	case bi[i].TimeStamp != bi[j].TimeStamp:
		return bi[i].TimeStamp < bi[j].TimeStamp
	case bi[i].From != bi[j].From:
		return bi[i].From < bi[j].From
	case bi[i].Nonce != bi[j].Nonce:
		return bi[i].Nonce < bi[j].Nonce
	}
	return bi[i].Hash < bi[j].Hash
}

// Swap moves transactions in the list.
func (bi byInclusion) Swap(i, j int) {
	bi[i], bi[j] = bi[j], bi[i]
}
