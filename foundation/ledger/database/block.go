package database

import (
	"github.com/ardanlabs/ledger/foundation/ledger/digest"
)

// Block represents the open block accumulating transaction hashes until
// the next mining event.
type Block struct {
	Transactions []string `json:"transactions"`
	TimeStamp    int64    `json:"timestamp"`
}

// NewBlock constructs an empty open block.
func NewBlock(timeStamp int64) Block {
	return Block{
		Transactions: []string{},
		TimeStamp:    timeStamp,
	}
}

// =============================================================================

// MinedBlock represents a finalized block. It is never changed once
// it has been produced.
type MinedBlock struct {
	Transactions []string `json:"transactions"`
	TimeStamp    int64    `json:"timestamp"`
	Height       uint64   `json:"height"`
	Miner        string   `json:"miner"`
	Hash         string   `json:"hash"`
}

// NewMinedBlock finalizes the open block at the specified height and
// computes its hash.
func NewMinedBlock(block Block, height uint64, miner string) MinedBlock {
	trans := block.Transactions
	if trans == nil {
		trans = []string{}
	}

	mb := MinedBlock{
		Transactions: trans,
		TimeStamp:    block.TimeStamp,
		Height:       height,
		Miner:        miner,
	}
	mb.Hash = mb.ComputeHash()

	return mb
}

// ComputeHash returns the content address of the block. The hash field
// itself is not part of the input.
func (mb MinedBlock) ComputeHash() string {
	header := struct {
		Transactions []string `json:"transactions"`
		TimeStamp    int64    `json:"timestamp"`
		Height       uint64   `json:"height"`
		Miner        string   `json:"miner"`
	}{
		Transactions: mb.Transactions,
		TimeStamp:    mb.TimeStamp,
		Height:       mb.Height,
		Miner:        mb.Miner,
	}

	return digest.Hash(header)
}
