// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/accounts"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/mempool"
	"github.com/ardanlabs/ledger/foundation/ledger/selector"
	"github.com/jonboulle/clockwork"
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for producing blocks on a schedule.
type Worker interface {
	Shutdown()
	Pause()
	Resume()
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis        string
	Miners         []string
	MineFee        int64
	MineInterval   time.Duration
	SelectStrategy string
	Storage        database.Storage
	Clock          clockwork.Clock
	EvHandler      EventHandler
}

// State manages the ledger.
type State struct {
	genesis      string
	miners       []string
	mineFee      int64
	mineInterval time.Duration
	selector     selector.Func
	clock        clockwork.Clock
	storage      database.Storage
	evHandler    EventHandler

	restartMu sync.Mutex
	mu        sync.RWMutex

	accounts *accounts.Accounts
	mempool  *mempool.Mempool
	txs      map[string]database.SignedTx
	blocks   []database.MinedBlock

	Worker Worker
}

// New constructs the ledger from what is found in storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Genesis == "" {
		return nil, fmt.Errorf("%w: genesis address is required", ErrConfiguration)
	}
	if len(cfg.Miners) == 0 {
		return nil, fmt.Errorf("%w: at least one miner is required", ErrConfiguration)
	}
	if cfg.MineFee < 0 {
		return nil, fmt.Errorf("%w: mine fee %d is negative", ErrConfiguration, cfg.MineFee)
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("%w: storage is required", ErrConfiguration)
	}

	strategy := cfg.SelectStrategy
	if strategy == "" {
		strategy = selector.StrategyRandom
	}
	selectFunc, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	miners := make([]string, len(cfg.Miners))
	copy(miners, cfg.Miners)

	state := State{
		genesis:      cfg.Genesis,
		miners:       miners,
		mineFee:      cfg.MineFee,
		mineInterval: cfg.MineInterval,
		selector:     selectFunc,
		clock:        clock,
		storage:      cfg.Storage,
		evHandler:    ev,
	}

	// Load everything that was committed before the last shutdown.
	snap, err := cfg.Storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load storage: %w", err)
	}

	state.load(snap)

	ev("state: New: loaded: blocks[%d] txs[%d] accounts[%d]", len(snap.Blocks), len(snap.Transactions), len(snap.Accounts))

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all block production before closing storage.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.storage.Close()
}

// Restart wipes the ledger both in storage and in memory. Block production
// is paused while this happens and resumed after.
func (s *State) Restart() error {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()

	s.evHandler("state: Restart: started")
	defer s.evHandler("state: Restart: completed")

	// Any tick in flight completes before the worker reports it's paused.
	if s.Worker != nil {
		s.Worker.Pause()
		defer s.Worker.Resume()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.WipeAll(); err != nil {
		return fmt.Errorf("wipe storage: %w", err)
	}

	s.accounts.Reset()
	s.mempool.Truncate(s.clock.Now().Unix())
	s.txs = make(map[string]database.SignedTx)
	s.blocks = nil

	chainHeight.Set(0)

	s.evHandler("viewer: restart: ledger wiped")

	return nil
}

// =============================================================================

// RetrieveGenesis returns the genesis address.
func (s *State) RetrieveGenesis() string {
	return s.genesis
}

// RetrieveMiners returns a copy of the configured miners.
func (s *State) RetrieveMiners() []string {
	miners := make([]string, len(s.miners))
	copy(miners, s.miners)
	return miners
}

// RetrieveMineInterval returns how often a new block is produced.
func (s *State) RetrieveMineInterval() time.Duration {
	return s.mineInterval
}

// RetrieveClock returns the clock the ledger stamps time with.
func (s *State) RetrieveClock() clockwork.Clock {
	return s.clock
}

// =============================================================================

// load replaces the in-memory state with the snapshot. It assumes it's
// always inside a mutex lock or during construction.
func (s *State) load(snap database.Snapshot) {
	s.accounts = accounts.New(s.genesis, snap.Accounts)
	s.mempool = mempool.New(s.clock.Now().Unix())

	s.txs = make(map[string]database.SignedTx, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		s.txs[tx.Hash] = tx
	}

	s.blocks = make([]database.MinedBlock, len(snap.Blocks))
	copy(s.blocks, snap.Blocks)

	chainHeight.Set(float64(len(s.blocks)))
}

// =============================================================================

// IsInvariant reports whether the error means the ledger can no longer
// trust its own state.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}
