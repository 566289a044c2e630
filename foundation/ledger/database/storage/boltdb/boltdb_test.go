package boltdb_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/boltdb"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*boltdb.BoltDB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := boltdb.New(path)
	require.NoError(t, err)

	return store, path
}

func commitTestBlock(t *testing.T, store database.Storage, height uint64, txs []database.SignedTx, accounts []database.Account) database.MinedBlock {
	t.Helper()

	block := database.NewBlock(int64(1000 + height))
	for _, tx := range txs {
		block.Transactions = append(block.Transactions, tx.Hash)
	}
	mined := database.NewMinedBlock(block, height, "miner1")

	require.NoError(t, store.CommitBlock(mined, txs, accounts))
	return mined
}

func TestCommitAndLoad(t *testing.T) {
	store, path := openStore(t)

	tx0 := database.NewTx("genesis", "alice", 100, 0, 1000).Sign(0)
	tx1 := database.NewTx("alice", "bob", 40, 0, 1001).Sign(0)
	reward0 := database.NewTx("genesis", "miner1", 5, 1, 1002).Sign(0)

	block0 := commitTestBlock(t, store, 0,
		[]database.SignedTx{tx0, tx1, reward0},
		[]database.Account{
			{Address: "genesis", Balance: -105, TransactionCount: 2},
			{Address: "alice", Balance: 60, TransactionCount: 1},
			{Address: "bob", Balance: 40},
			{Address: "miner1", Balance: 5},
		},
	)

	reward1 := database.NewTx("genesis", "miner1", 5, 2, 1003).Sign(1)
	block1 := commitTestBlock(t, store, 1,
		[]database.SignedTx{reward1},
		[]database.Account{
			{Address: "genesis", Balance: -110, TransactionCount: 3},
			{Address: "miner1", Balance: 10},
		},
	)

	require.NoError(t, store.Close())

	// Reopen the file to prove the data survives the process.
	store, err := boltdb.New(path)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.LoadAll()
	require.NoError(t, err)

	require.Len(t, snap.Blocks, 2)
	require.Equal(t, block0, snap.Blocks[0])
	require.Equal(t, block1, snap.Blocks[1])
	require.Len(t, snap.Transactions, 4)
	require.Len(t, snap.Accounts, 4)

	accounts := make(map[string]database.Account)
	for _, account := range snap.Accounts {
		accounts[account.Address] = account
	}
	require.Equal(t, int64(10), accounts["miner1"].Balance)
	require.Equal(t, int64(-110), accounts["genesis"].Balance)
	require.Equal(t, int64(3), accounts["genesis"].TransactionCount)
}

func TestDuplicateHeight(t *testing.T) {
	store, _ := openStore(t)
	defer store.Close()

	tx := database.NewTx("genesis", "miner1", 5, 0, 1000).Sign(0)
	commitTestBlock(t, store, 0, []database.SignedTx{tx}, []database.Account{{Address: "miner1", Balance: 5}})

	again := database.NewMinedBlock(database.NewBlock(2000), 0, "miner2")
	other := database.NewTx("genesis", "miner2", 5, 1, 2000).Sign(0)
	require.Error(t, store.CommitBlock(again, []database.SignedTx{other}, []database.Account{{Address: "miner2", Balance: 5}}))

	snap, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, snap.Blocks, 1)
	require.Len(t, snap.Transactions, 1, "a rejected commit must not write anything")
	require.Len(t, snap.Accounts, 1)
}

func TestWipeAll(t *testing.T) {
	store, _ := openStore(t)
	defer store.Close()

	tx := database.NewTx("genesis", "miner1", 5, 0, 1000).Sign(0)
	commitTestBlock(t, store, 0, []database.SignedTx{tx}, []database.Account{{Address: "miner1", Balance: 5}})

	require.NoError(t, store.WipeAll())

	snap, err := store.LoadAll()
	require.NoError(t, err)
	require.Empty(t, snap.Blocks)
	require.Empty(t, snap.Transactions)
	require.Empty(t, snap.Accounts)

	// The store must be usable again after the wipe.
	commitTestBlock(t, store, 0, []database.SignedTx{tx}, []database.Account{{Address: "miner1", Balance: 5}})
}
