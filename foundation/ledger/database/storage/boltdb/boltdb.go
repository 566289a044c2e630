// Package boltdb implements the ability to persist the ledger in a single
// bbolt file. Blocks, transactions and accounts live in their own bucket
// and values are stored as JSON.
package boltdb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	bolt "go.etcd.io/bbolt"
)

// Set of bucket names used by the store.
var (
	bucketBlocks       = []byte("blocks")
	bucketTransactions = []byte("transactions")
	bucketAccounts     = []byte("accounts")
)

// BoltDB represents the storage implementation for persisting the ledger in
// a bbolt file. This implements the database.Storage interface.
type BoltDB struct {
	db *bolt.DB
}

// New opens or creates the bbolt file at the specified path and makes sure
// the buckets exist.
func New(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := db.Update(createBuckets); err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Close releases the underlying file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// LoadAll reads every account, transaction and block from the file.
func (b *BoltDB) LoadAll() (database.Snapshot, error) {
	var snap database.Snapshot
	var blocks []database.MinedBlock

	err := b.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketAccounts).ForEach(func(_, v []byte) error {
			var account database.Account
			if err := json.Unmarshal(v, &account); err != nil {
				return fmt.Errorf("decode account: %w", err)
			}
			snap.Accounts = append(snap.Accounts, account)
			return nil
		})
		if err != nil {
			return err
		}

		err = tx.Bucket(bucketTransactions).ForEach(func(_, v []byte) error {
			var signed database.SignedTx
			if err := json.Unmarshal(v, &signed); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
			snap.Transactions = append(snap.Transactions, signed)
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(bucketBlocks).ForEach(func(_, v []byte) error {
			var block database.MinedBlock
			if err := json.Unmarshal(v, &block); err != nil {
				return fmt.Errorf("decode block: %w", err)
			}
			blocks = append(blocks, block)
			return nil
		})
	})
	if err != nil {
		return database.Snapshot{}, err
	}

	snap.Blocks = database.AssembleBlocks(blocks, snap.Transactions)

	return snap, nil
}

// CommitBlock writes the block, its transactions and the accounts inside a
// single bbolt transaction.
func (b *BoltDB) CommitBlock(block database.MinedBlock, txs []database.SignedTx, accounts []database.Account) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		blocks := tx.Bucket(bucketBlocks)

		key := heightKey(block.Height)
		if blocks.Get(key) != nil {
			return fmt.Errorf("block %d already exists", block.Height)
		}

		// Membership is rebuilt from the transactions on load.
		row := block
		row.Transactions = nil

		if err := put(blocks, key, row); err != nil {
			return fmt.Errorf("block %d: %w", block.Height, err)
		}

		trans := tx.Bucket(bucketTransactions)
		for _, signed := range txs {
			if err := put(trans, []byte(signed.Hash), signed); err != nil {
				return fmt.Errorf("transaction %s: %w", signed.Hash, err)
			}
		}

		accts := tx.Bucket(bucketAccounts)
		for _, account := range accounts {
			if err := put(accts, []byte(account.Address), account); err != nil {
				return fmt.Errorf("account %s: %w", account.Address, err)
			}
		}

		return nil
	})
}

// WipeAll drops and recreates every bucket.
func (b *BoltDB) WipeAll() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlocks, bucketTransactions, bucketAccounts} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return fmt.Errorf("delete bucket %s: %w", name, err)
			}
		}
		return createBuckets(tx)
	})
}

// =============================================================================

func createBuckets(tx *bolt.Tx) error {
	for _, name := range [][]byte{bucketBlocks, bucketTransactions, bucketAccounts} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("bucket %s: %w", name, err)
		}
	}
	return nil
}

func put(bucket *bolt.Bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return bucket.Put(key, data)
}

// heightKey encodes the height big-endian so the keys sort by height.
func heightKey(height uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	return key
}
