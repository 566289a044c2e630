package database

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/ledger/digest"
)

// Tx is the transactional information between two parties. The field order
// is the order the fields are hashed in.
type Tx struct {
	From      string `json:"from"`      // Account sending the value.
	To        string `json:"to"`        // Account receiving the value.
	Amount    int64  `json:"amount"`    // Value being transferred.
	Nonce     int64  `json:"nonce"`     // Sender's transaction count at submission.
	TimeStamp int64  `json:"timestamp"` // Unix seconds the transaction was accepted.
}

// NewTx constructs a new transaction.
func NewTx(from string, to string, amount int64, nonce int64, timeStamp int64) Tx {
	return Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		Nonce:     nonce,
		TimeStamp: timeStamp,
	}
}

// Hash returns the content address of the transaction.
func (tx Tx) Hash() string {
	return digest.Hash(tx)
}

// Sign finalizes the transaction for the block at the specified height.
func (tx Tx) Sign(block uint64) SignedTx {
	return SignedTx{
		Hash:  tx.Hash(),
		Block: block,
		Tx:    tx,
	}
}

// =============================================================================

// SignedTx is a transaction that has been accepted by the ledger.
type SignedTx struct {
	Hash  string `json:"hash"`
	Block uint64 `json:"block"`
	Tx
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%d", tx.From, tx.Nonce)
}
