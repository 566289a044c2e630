package state

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// MineNewBlock closes the open block. A miner is selected and rewarded from
// the genesis account, the block is finalized and committed to storage, and
// then appended to the chain. If the commit fails, everything the block did
// in memory is undone and a PersistenceError is returned.
func (s *State) MineNewBlock() (database.MinedBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	height := uint64(len(s.blocks))

	miner := s.selector(s.miners)
	s.evHandler("state: MineNewBlock: MINING: height[%d] miner[%s]", height, miner)

	// Capture what the reward will change so it can be undone.
	genesisBefore, _ := s.accounts.Query(s.genesis)
	minerBefore, minerExisted := s.accounts.Query(miner)

	reward, prev, replaced, err := s.send(s.genesis, miner, s.mineFee)
	if err != nil {
		return database.MinedBlock{}, fmt.Errorf("%w: reward for block %d: %s", ErrInvariant, height, err)
	}

	block := s.mempool.DrainAndReset(s.clock.Now().Unix())

	txs := make([]database.SignedTx, 0, len(block.Transactions))
	seen := make(map[string]struct{}, len(block.Transactions))
	for _, hash := range block.Transactions {
		if _, exists := seen[hash]; exists {
			continue
		}
		seen[hash] = struct{}{}

		tx, exists := s.txs[hash]
		if !exists {
			return database.MinedBlock{}, fmt.Errorf("%w: block %d references unknown tx %s", ErrInvariant, height, hash)
		}
		txs = append(txs, tx)
	}
	database.SortTransactions(txs)

	ordered := database.NewBlock(block.TimeStamp)
	for _, tx := range txs {
		ordered.Transactions = append(ordered.Transactions, tx.Hash)
	}
	mined := database.NewMinedBlock(ordered, height, miner)

	s.evHandler("state: MineNewBlock: MINING: commit: txs[%d]", len(txs))

	start := time.Now()
	err = s.storage.CommitBlock(mined, txs, s.accounts.Touched())
	commitLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		commitFailures.Inc()

		s.accounts.Restore(genesisBefore)
		switch {
		case miner == s.genesis:
		case minerExisted:
			s.accounts.Restore(minerBefore)
		default:
			s.accounts.Remove(miner)
		}

		if replaced {
			s.txs[reward.Hash] = prev
		} else {
			delete(s.txs, reward.Hash)
		}

		block.Transactions = block.Transactions[:len(block.Transactions)-1]
		s.mempool.Restore(block)

		s.evHandler("state: MineNewBlock: MINING: ERROR: commit: %s", err)
		return database.MinedBlock{}, &PersistenceError{Height: height, Err: err}
	}

	s.blocks = append(s.blocks, mined)
	s.accounts.ClearTouched()

	blocksMined.Inc()
	chainHeight.Set(float64(len(s.blocks)))

	s.evHandler("viewer: block: height[%d] hash[%s] miner[%s] txs[%d]", mined.Height, mined.Hash, mined.Miner, len(mined.Transactions))

	return mined, nil
}
