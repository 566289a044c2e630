// Package worker implements the scheduled block production for the ledger.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/jonboulle/clockwork"
)

// defaultInterval is used when the ledger is configured without one.
const defaultInterval = 5 * time.Second

// =============================================================================

// Worker manages the block production workflow for the ledger.
type Worker struct {
	state     *state.State
	clock     clockwork.Clock
	interval  time.Duration
	ticker    clockwork.Ticker
	wg        sync.WaitGroup
	shut      chan struct{}
	evHandler state.EventHandler

	mu      sync.Mutex
	paused  bool
	halted  bool
	stopped bool
}

// Run creates a worker, registers the worker with the state package, and
// starts up the background block production.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	interval := st.RetrieveMineInterval()
	if interval <= 0 {
		interval = defaultInterval
	}

	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	clock := st.RetrieveClock()

	w := Worker{
		state:     st,
		clock:     clock,
		interval:  interval,
		ticker:    clock.NewTicker(interval),
		shut:      make(chan struct{}),
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	w.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.miningOperations()
	}()

	<-hasStarted

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// Pause stops block production. If a block is being produced, Pause doesn't
// return until it's done.
func (w *Worker) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.paused = true
	w.ticker.Stop()

	w.evHandler("worker: Pause: block production paused")
}

// Resume starts block production again with a full interval before the
// next block. This also clears a halt caused by an invariant failure.
func (w *Worker) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	w.paused = false
	w.halted = false
	w.ticker.Reset(w.interval)

	w.evHandler("worker: Resume: block production resumed")
}

// =============================================================================

// miningOperations produces a block on every tick until shutdown.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.ticker.Chan():
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation closes the open block and commits it.
func (w *Worker) runMiningOperation() {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A tick may have been queued before the pause.
	if w.paused || w.halted {
		w.evHandler("worker: runMiningOperation: MINING: skipped: paused[%v] halted[%v]", w.paused, w.halted)
		return
	}

	w.evHandler("worker: runMiningOperation: started")
	defer w.evHandler("worker: runMiningOperation: completed")

	block, err := w.state.MineNewBlock()
	if err != nil {
		switch {
		case state.IsInvariant(err):
			w.halted = true
			w.evHandler("worker: runMiningOperation: MINING: HALTED: %s", err)
		case state.IsPersistenceError(err):
			w.evHandler("worker: runMiningOperation: MINING: WARNING: block rolled back: %s", err)
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: block[%d] hash[%s] txs[%d]", block.Height, block.Hash, len(block.Transactions))
}

// Halted reports whether block production stopped after an invariant failure.
func (w *Worker) Halted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.halted
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
