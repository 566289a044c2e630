// Package accounts maintains account balances and transaction counts.
package accounts

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
)

// Set of errors returned when value can't be moved out of an account.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrBalanceOverflow     = errors.New("balance overflow")
)

// Accounts manages data related to accounts who have transacted on
// the ledger. The genesis account is the source of all value and is never
// checked for a balance.
type Accounts struct {
	genesis string
	info    map[string]database.Account
	touched map[string]struct{}
	mu      sync.RWMutex
}

// New constructs the accounts from the specified persisted accounts. The
// genesis account is seeded if it doesn't exist yet.
func New(genesis string, accounts []database.Account) *Accounts {
	act := Accounts{
		genesis: genesis,
		info:    make(map[string]database.Account),
		touched: make(map[string]struct{}),
	}

	for _, account := range accounts {
		act.info[account.Address] = account
	}

	if _, exists := act.info[genesis]; !exists {
		act.info[genesis] = database.Account{Address: genesis}
	}

	return &act
}

// Reset re-initializes the accounts back to the genesis account only.
func (act *Accounts) Reset() {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.info = map[string]database.Account{
		act.genesis: {Address: act.genesis},
	}
	act.touched = make(map[string]struct{})
}

// IsGenesis reports whether the address is the genesis account.
func (act *Accounts) IsGenesis(address string) bool {
	return address == act.genesis
}

// Query returns a copy of the specified account.
func (act *Accounts) Query(address string) (database.Account, bool) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	account, exists := act.info[address]
	return account, exists
}

// Copy makes a copy of the current information for all accounts.
func (act *Accounts) Copy() map[string]database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[string]database.Account, len(act.info))
	for address, account := range act.info {
		accounts[address] = account
	}
	return accounts
}

// =============================================================================

// Credit adds the amount to the account, creating the account if it
// doesn't exist. The account is not changed if its balance would overflow.
func (act *Accounts) Credit(address string, amount int64) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	if err := act.canCredit(address, amount); err != nil {
		return err
	}

	act.credit(address, amount)
	return nil
}

// Debit removes the amount from the account. Only the genesis account can
// be debited if it has never been seen or doesn't hold enough value.
func (act *Accounts) Debit(address string, amount int64) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	if err := act.canDebit(address, amount); err != nil {
		return err
	}

	act.debit(address, amount)
	return nil
}

// NextNonce returns the current transaction count for the account to be
// used as the nonce of a new transaction, then increments the count.
func (act *Accounts) NextNonce(address string) int64 {
	act.mu.Lock()
	defer act.mu.Unlock()

	return act.nextNonce(address)
}

// Transfer moves the amount between the two accounts and increments the
// sender's transaction count as one operation. The sender's nonce for this
// transfer is returned. On failure neither account is changed.
func (act *Accounts) Transfer(from string, to string, amount int64) (int64, error) {
	act.mu.Lock()
	defer act.mu.Unlock()

	if err := act.canDebit(from, amount); err != nil {
		return 0, err
	}

	if from != to {
		if err := act.canCredit(to, amount); err != nil {
			return 0, err
		}
	}

	nonce := act.nextNonce(from)
	act.debit(from, amount)
	act.credit(to, amount)

	return nonce, nil
}

// =============================================================================

// Touched returns a copy of every account changed since the last call
// to ClearTouched.
func (act *Accounts) Touched() []database.Account {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make([]database.Account, 0, len(act.touched))
	for address := range act.touched {
		if account, exists := act.info[address]; exists {
			accounts = append(accounts, account)
		}
	}

	return accounts
}

// ClearTouched forgets the set of changed accounts. This is called once
// those accounts have been persisted.
func (act *Accounts) ClearTouched() {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.touched = make(map[string]struct{})
}

// Restore replaces the specified accounts with the provided values.
func (act *Accounts) Restore(accounts ...database.Account) {
	act.mu.Lock()
	defer act.mu.Unlock()

	for _, account := range accounts {
		act.info[account.Address] = account
	}
}

// Remove deletes an account from the accounts. The genesis account
// can't be removed.
func (act *Accounts) Remove(address string) {
	act.mu.Lock()
	defer act.mu.Unlock()

	if address == act.genesis {
		return
	}

	delete(act.info, address)
	delete(act.touched, address)
}

// =============================================================================

// canDebit performs the balance checks for moving value out of an account.
// The genesis account is only limited by the range of its stored balance.
// It assumes it's always inside a mutex lock.
func (act *Accounts) canDebit(address string, amount int64) error {
	if address == act.genesis {
		if account := act.info[address]; account.Balance < math.MinInt64+amount {
			return fmt.Errorf("%w: %s, bal %d, debit %d", ErrBalanceOverflow, address, account.Balance, amount)
		}
		return nil
	}

	account, exists := act.info[address]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}

	if account.Balance < amount {
		return fmt.Errorf("%w: %s, bal %d, needed %d", ErrInsufficientBalance, address, account.Balance, amount)
	}

	return nil
}

// canCredit checks the account can hold the amount. It assumes it's always
// inside a mutex lock.
func (act *Accounts) canCredit(address string, amount int64) error {
	if account := act.info[address]; account.Balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: %s, bal %d, credit %d", ErrBalanceOverflow, address, account.Balance, amount)
	}

	return nil
}

// It assumes it's always inside a mutex lock.
func (act *Accounts) credit(address string, amount int64) {
	account := act.info[address]
	account.Address = address
	account.Balance += amount

	act.info[address] = account
	act.touched[address] = struct{}{}
}

// It assumes it's always inside a mutex lock.
func (act *Accounts) debit(address string, amount int64) {
	account := act.info[address]
	account.Address = address
	account.Balance -= amount

	act.info[address] = account
	act.touched[address] = struct{}{}
}

// It assumes it's always inside a mutex lock.
func (act *Accounts) nextNonce(address string) int64 {
	account := act.info[address]
	account.Address = address
	nonce := account.TransactionCount
	account.TransactionCount++

	act.info[address] = account
	act.touched[address] = struct{}{}

	return nonce
}
