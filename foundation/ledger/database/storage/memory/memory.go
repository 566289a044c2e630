// Package memory implements the ability to persist the ledger in memory
// using maps. Nothing survives the process.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// ErrInjected is returned by CommitBlock when a failure was requested
// with FailNextCommit.
var ErrInjected = errors.New("injected commit failure")

// Memory represents the storage implementation for persisting the ledger
// in memory. This implements the database.Storage interface.
type Memory struct {
	mu         sync.RWMutex
	blocks     map[uint64]database.MinedBlock
	trans      map[string]database.SignedTx
	accounts   map[string]database.Account
	failCommit bool
	commits    int
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		blocks:   make(map[uint64]database.MinedBlock),
		trans:    make(map[string]database.SignedTx),
		accounts: make(map[string]database.Account),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// LoadAll returns everything that has been committed.
func (m *Memory) LoadAll() (database.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var snap database.Snapshot

	for _, account := range m.accounts {
		snap.Accounts = append(snap.Accounts, account)
	}

	for _, tx := range m.trans {
		snap.Transactions = append(snap.Transactions, tx)
	}

	blocks := make([]database.MinedBlock, 0, len(m.blocks))
	for _, block := range m.blocks {
		blocks = append(blocks, block)
	}
	snap.Blocks = database.AssembleBlocks(blocks, snap.Transactions)

	return snap, nil
}

// CommitBlock stores the block, its transactions and the accounts as a
// single unit.
func (m *Memory) CommitBlock(block database.MinedBlock, txs []database.SignedTx, accounts []database.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommit {
		m.failCommit = false
		return ErrInjected
	}

	if _, exists := m.blocks[block.Height]; exists {
		return fmt.Errorf("block %d already exists", block.Height)
	}

	m.blocks[block.Height] = block
	for _, tx := range txs {
		m.trans[tx.Hash] = tx
	}
	for _, account := range accounts {
		m.accounts[account.Address] = account
	}
	m.commits++

	return nil
}

// WipeAll removes all blocks, transactions and accounts.
func (m *Memory) WipeAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = make(map[uint64]database.MinedBlock)
	m.trans = make(map[string]database.SignedTx)
	m.accounts = make(map[string]database.Account)

	return nil
}

// =============================================================================

// FailNextCommit makes the next call to CommitBlock fail without
// writing anything.
func (m *Memory) FailNextCommit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failCommit = true
}

// Commits returns the number of successful commits.
func (m *Memory) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.commits
}
