// Package mempool maintains the open block for the ledger. Every accepted
// transaction hash is held here until the next block is mined.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Mempool represents the open block accumulating transaction hashes.
type Mempool struct {
	block database.Block
	mu    sync.RWMutex
}

// New constructs a new mempool with an empty open block stamped with the
// specified time.
func New(timeStamp int64) *Mempool {
	return &Mempool{
		block: database.NewBlock(timeStamp),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.block.Transactions)
}

// Append adds the transaction hash to the open block.
func (mp *Mempool) Append(hash string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.block.Transactions = append(mp.block.Transactions, hash)
}

// Copy returns a copy of the open block.
func (mp *Mempool) Copy() database.Block {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return copyBlock(mp.block)
}

// DrainAndReset returns the accumulated open block and replaces it with a
// new empty block stamped with the specified time.
func (mp *Mempool) DrainAndReset(timeStamp int64) database.Block {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	block := mp.block
	mp.block = database.NewBlock(timeStamp)

	return block
}

// Restore puts a previously drained block back as the open block. Any hash
// appended since the drain is kept after the restored ones.
func (mp *Mempool) Restore(block database.Block) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	restored := copyBlock(block)
	restored.Transactions = append(restored.Transactions, mp.block.Transactions...)

	mp.block = restored
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate(timeStamp int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.block = database.NewBlock(timeStamp)
}

// =============================================================================

// copyBlock makes a deep copy of the block.
func copyBlock(block database.Block) database.Block {
	trans := make([]string, len(block.Transactions))
	copy(trans, block.Transactions)

	return database.Block{
		Transactions: trans,
		TimeStamp:    block.TimeStamp,
	}
}
