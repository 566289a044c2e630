package state

import (
	"fmt"
	"math"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// BlockHeight returns the number of blocks in the chain.
func (s *State) BlockHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.blocks))
}

// QueryAccount returns the account with the hashes of every transaction it
// sent or received. An address that has never been seen gets an empty
// response. The genesis account always reports the maximum balance.
func (s *State) QueryAccount(address string) database.AccountResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := database.AccountResponse{
		Address:      address,
		Transactions: []string{},
	}

	account, exists := s.accounts.Query(address)
	if !exists {
		return resp
	}

	resp.Balance = account.Balance
	resp.TransactionCount = account.TransactionCount
	if s.accounts.IsGenesis(address) {
		resp.Balance = math.MaxInt64
	}

	// A full scan is fine for the number of transactions this ledger holds.
	var txs []database.SignedTx
	for _, tx := range s.txs {
		if tx.From == address || tx.To == address {
			txs = append(txs, tx)
		}
	}

	// Listed in the order the transactions were accepted.
	database.SortTransactions(txs)
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, tx.Hash)
	}

	return resp
}

// QueryBlock returns the block at the specified height.
func (s *State) QueryBlock(height uint64) (database.MinedBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if height >= uint64(len(s.blocks)) {
		return database.MinedBlock{}, fmt.Errorf("block %d: %w", height, database.ErrNotFound)
	}

	block := s.blocks[height]

	trans := make([]string, len(block.Transactions))
	copy(trans, block.Transactions)
	block.Transactions = trans

	return block, nil
}

// QueryTransaction returns the transaction with the specified hash. This
// includes transactions still waiting in the open block.
func (s *State) QueryTransaction(hash string) (database.SignedTx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.txs[hash]
	if !exists {
		return database.SignedTx{}, fmt.Errorf("transaction %s: %w", hash, database.ErrNotFound)
	}

	return tx, nil
}

// QueryMempool returns a copy of the open block.
func (s *State) QueryMempool() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mempool.Copy()
}

// QueryMempoolLength returns the number of transactions in the open block.
func (s *State) QueryMempoolLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mempool.Count()
}
