// Package postgres implements the ability to persist the ledger in a
// PostgreSQL database using three tables: blocks, transactions and accounts.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	_ "github.com/lib/pq"
)

// Schema for the ledger tables. The statements are safe to run on every
// start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS blocks (
		height    BIGINT PRIMARY KEY,
		miner     TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		hash      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		hash      TEXT PRIMARY KEY,
		"from"    TEXT NOT NULL,
		"to"      TEXT NOT NULL,
		amount    BIGINT NOT NULL,
		nonce     BIGINT NOT NULL,
		block     BIGINT NOT NULL,
		timestamp BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		address           TEXT PRIMARY KEY,
		balance           BIGINT NOT NULL,
		transaction_count BIGINT NOT NULL
	)`,
}

const (
	insertBlock = `INSERT INTO blocks (height, miner, timestamp, hash) VALUES ($1, $2, $3, $4)`

	upsertTransaction = `INSERT INTO transactions (hash, "from", "to", amount, nonce, block, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (hash) DO UPDATE SET
			"from" = EXCLUDED."from",
			"to" = EXCLUDED."to",
			amount = EXCLUDED.amount,
			nonce = EXCLUDED.nonce,
			block = EXCLUDED.block,
			timestamp = EXCLUDED.timestamp`

	upsertAccount = `INSERT INTO accounts (address, balance, transaction_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET
			balance = EXCLUDED.balance,
			transaction_count = EXCLUDED.transaction_count`
)

// Postgres represents the storage implementation for persisting the ledger
// in PostgreSQL. This implements the database.Storage interface.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration // for loads and wipes
}

// New connects to the database at the specified url and creates the tables
// if they don't exist.
func New(ctx context.Context, url string) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	pg := Postgres{
		db:      db,
		timeout: 10 * time.Second,
	}

	return &pg, nil
}

// Close closes the connection pool.
func (pg *Postgres) Close() error {
	return pg.db.Close()
}

// LoadAll reads every account, transaction and block from the database.
func (pg *Postgres) LoadAll() (database.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pg.timeout)
	defer cancel()

	var snap database.Snapshot

	accounts, err := pg.queryAccounts(ctx)
	if err != nil {
		return database.Snapshot{}, err
	}
	snap.Accounts = accounts

	txs, err := pg.queryTransactions(ctx)
	if err != nil {
		return database.Snapshot{}, err
	}
	snap.Transactions = txs

	blocks, err := pg.queryBlocks(ctx)
	if err != nil {
		return database.Snapshot{}, err
	}
	snap.Blocks = database.AssembleBlocks(blocks, txs)

	return snap, nil
}

// CommitBlock writes the block, its transactions and the accounts inside a
// single SQL transaction. The commit has no deadline: a block is either
// written or the call reports the database error, and the ledger waits.
func (pg *Postgres) CommitBlock(block database.MinedBlock, txs []database.SignedTx, accounts []database.Account) error {
	ctx := context.Background()

	dbTx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, insertBlock, int64(block.Height), block.Miner, block.TimeStamp, block.Hash); err != nil {
		return fmt.Errorf("block %d: %w", block.Height, err)
	}

	for _, tx := range txs {
		if _, err := dbTx.ExecContext(ctx, upsertTransaction, tx.Hash, tx.From, tx.To, tx.Amount, tx.Nonce, int64(tx.Block), tx.TimeStamp); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.Hash, err)
		}
	}

	for _, account := range accounts {
		if _, err := dbTx.ExecContext(ctx, upsertAccount, account.Address, account.Balance, account.TransactionCount); err != nil {
			return fmt.Errorf("account %s: %w", account.Address, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// WipeAll removes every row from the three tables.
func (pg *Postgres) WipeAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), pg.timeout)
	defer cancel()

	if _, err := pg.db.ExecContext(ctx, `TRUNCATE blocks, transactions, accounts`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	return nil
}

// =============================================================================

func (pg *Postgres) queryAccounts(ctx context.Context) ([]database.Account, error) {
	rows, err := pg.db.QueryContext(ctx, `SELECT address, balance, transaction_count FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []database.Account
	for rows.Next() {
		var account database.Account
		if err := rows.Scan(&account.Address, &account.Balance, &account.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func (pg *Postgres) queryTransactions(ctx context.Context) ([]database.SignedTx, error) {
	rows, err := pg.db.QueryContext(ctx, `SELECT hash, "from", "to", amount, nonce, block, timestamp FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []database.SignedTx
	for rows.Next() {
		var tx database.SignedTx
		var block int64
		if err := rows.Scan(&tx.Hash, &tx.From, &tx.To, &tx.Amount, &tx.Nonce, &block, &tx.TimeStamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Block = uint64(block)
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func (pg *Postgres) queryBlocks(ctx context.Context) ([]database.MinedBlock, error) {
	rows, err := pg.db.QueryContext(ctx, `SELECT height, miner, timestamp, hash FROM blocks ORDER BY height`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []database.MinedBlock
	for rows.Next() {
		var block database.MinedBlock
		var height int64
		if err := rows.Scan(&height, &block.Miner, &block.TimeStamp, &block.Hash); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		block.Height = uint64(height)
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}
