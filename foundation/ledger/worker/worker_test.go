package worker_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/ledger/selector"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/ledger/worker"
	"github.com/jonboulle/clockwork"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const interval = 10 * time.Second

func newState(t *testing.T, store *memory.Memory, clock clockwork.Clock) *state.State {
	t.Helper()

	st, err := state.New(state.Config{
		Genesis:        "genesis",
		Miners:         []string{"miner1"},
		MineFee:        5,
		MineInterval:   interval,
		SelectStrategy: selector.StrategyRoundRobin,
		Storage:        store,
		Clock:          clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}

	return st
}

// waitForHeight polls until the chain reaches the height or the wait
// expires. Mining happens on the worker goroutine.
func waitForHeight(st *state.State, height uint64) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st.BlockHeight() == height {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return st.BlockHeight() == height
}

// =============================================================================

func Test_Ticks(t *testing.T) {
	t.Log("Given the need to produce a block every interval.")
	{
		t.Logf("\tTest 0:\tWhen the clock moves forward three intervals.")
		{
			clock := clockwork.NewFakeClock()
			st := newState(t, memory.New(), clock)

			worker.Run(st, nil)
			defer st.Shutdown()

			for i := uint64(1); i <= 3; i++ {
				clock.BlockUntil(1)
				clock.Advance(interval)

				if !waitForHeight(st, i) {
					t.Fatalf("\t%s\tTest 0:\tShould reach height %d, got %d.", failed, i, st.BlockHeight())
				}
			}
			t.Logf("\t%s\tTest 0:\tShould produce one block per interval.", success)

			if st.QueryAccount("miner1").Balance != 15 {
				t.Fatalf("\t%s\tTest 0:\tShould reward the miner for every block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reward the miner for every block.", success)
		}

		t.Logf("\tTest 1:\tWhen the clock moves less than an interval.")
		{
			clock := clockwork.NewFakeClock()
			st := newState(t, memory.New(), clock)

			worker.Run(st, nil)
			defer st.Shutdown()

			clock.BlockUntil(1)
			clock.Advance(interval / 2)
			time.Sleep(50 * time.Millisecond)

			if st.BlockHeight() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould not produce a block early.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not produce a block early.", success)
		}
	}
}

func Test_Restart(t *testing.T) {
	t.Log("Given the need to restart the ledger while blocks are produced.")
	{
		t.Logf("\tTest 0:\tWhen restarting after a block.")
		{
			clock := clockwork.NewFakeClock()
			store := memory.New()
			st := newState(t, store, clock)

			worker.Run(st, nil)
			defer st.Shutdown()

			clock.BlockUntil(1)
			clock.Advance(interval)
			if !waitForHeight(st, 1) {
				t.Fatalf("\t%s\tTest 0:\tShould produce the first block.", failed)
			}

			if err := st.Restart(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to restart: %v", failed, err)
			}
			if st.BlockHeight() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould have an empty chain.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have an empty chain.", success)

			clock.BlockUntil(1)
			clock.Advance(interval)
			if !waitForHeight(st, 1) {
				t.Fatalf("\t%s\tTest 0:\tShould produce blocks again, height %d.", failed, st.BlockHeight())
			}
			t.Logf("\t%s\tTest 0:\tShould produce blocks again.", success)

			if store.Commits() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have committed twice, got %d.", failed, store.Commits())
			}
			t.Logf("\t%s\tTest 0:\tShould have committed twice.", success)
		}
	}
}

func Test_CommitFailure(t *testing.T) {
	t.Log("Given the need to keep producing blocks after a failed commit.")
	{
		t.Logf("\tTest 0:\tWhen one commit fails.")
		{
			clock := clockwork.NewFakeClock()
			store := memory.New()
			st := newState(t, store, clock)

			rolledBack := make(chan struct{}, 1)
			ev := func(v string, args ...any) {
				if strings.Contains(v, "rolled back") {
					select {
					case rolledBack <- struct{}{}:
					default:
					}
				}
			}

			w := worker.Run(st, ev)
			defer st.Shutdown()

			store.FailNextCommit()

			clock.BlockUntil(1)
			clock.Advance(interval)

			select {
			case <-rolledBack:
			case <-time.After(2 * time.Second):
				t.Fatalf("\t%s\tTest 0:\tShould attempt the block.", failed)
			}

			if st.BlockHeight() != 0 || w.Halted() {
				t.Fatalf("\t%s\tTest 0:\tShould skip the block without halting.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould skip the block without halting.", success)

			clock.BlockUntil(1)
			clock.Advance(interval)
			if !waitForHeight(st, 1) {
				t.Fatalf("\t%s\tTest 0:\tShould produce the next block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the next block.", success)
		}
	}
}
