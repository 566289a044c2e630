package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/ledger/accounts"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Send moves the amount between the two accounts and adds the transaction
// to the open block. The hash of the transaction is returned.
func (s *State) Send(from string, to string, amount int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	signed, _, _, err := s.send(from, to, amount)
	if err != nil {
		s.evHandler("state: Send: ERROR: from[%s] to[%s] amount[%d]: %s", from, to, amount, err)
		return "", err
	}

	s.evHandler("viewer: tx: hash[%s] from[%s] to[%s] amount[%d]", signed.Hash, from, to, amount)

	return signed.Hash, nil
}

// =============================================================================

// send performs the transfer and records the transaction. If the hash was
// already in the index, the replaced transaction is returned so the caller
// can undo the write. It assumes it's always inside a mutex lock.
func (s *State) send(from string, to string, amount int64) (database.SignedTx, database.SignedTx, bool, error) {
	if amount < 0 {
		transactionsRejected.WithLabelValues("invalid_amount").Inc()
		return database.SignedTx{}, database.SignedTx{}, false, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	nonce, err := s.accounts.Transfer(from, to, amount)
	if err != nil {
		transactionsRejected.WithLabelValues(rejectReason(err)).Inc()
		return database.SignedTx{}, database.SignedTx{}, false, err
	}

	tx := database.NewTx(from, to, amount, nonce, s.clock.Now().Unix())
	signed := tx.Sign(uint64(len(s.blocks)))

	// Identical transactions share a hash and the latest one wins.
	prev, replaced := s.txs[signed.Hash]
	s.txs[signed.Hash] = signed
	s.mempool.Append(signed.Hash)

	transactionsAccepted.Inc()

	return signed, prev, replaced, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, accounts.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, accounts.ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(err, accounts.ErrBalanceOverflow):
		return "balance_overflow"
	}
	return "other"
}
