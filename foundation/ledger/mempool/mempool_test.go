package mempool_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func TestDrain(t *testing.T) {
	t.Log("Given the need to close the open block.")
	{
		t.Logf("\tTest 0:\tWhen draining a pool with transactions.")
		{
			mp := mempool.New(100)
			mp.Append("0x01")
			mp.Append("0x02")

			block := mp.DrainAndReset(200)
			if len(block.Transactions) != 2 || block.Transactions[0] != "0x01" || block.Transactions[1] != "0x02" {
				t.Fatalf("\t%s\tTest 0:\tShould get the hashes in order: %v", failed, block.Transactions)
			}
			t.Logf("\t%s\tTest 0:\tShould get the hashes in order.", success)

			if block.TimeStamp != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the open timestamp: %d", failed, block.TimeStamp)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the open timestamp.", success)

			open := mp.Copy()
			if mp.Count() != 0 || open.TimeStamp != 200 {
				t.Fatalf("\t%s\tTest 0:\tShould open a fresh block: %+v", failed, open)
			}
			t.Logf("\t%s\tTest 0:\tShould open a fresh block.", success)

			if open.Transactions == nil {
				t.Fatalf("\t%s\tTest 0:\tShould open a block with an empty, non-nil list.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould open a block with an empty, non-nil list.", success)
		}

		t.Logf("\tTest 1:\tWhen restoring a drained block.")
		{
			mp := mempool.New(100)
			mp.Append("0x01")
			block := mp.DrainAndReset(200)
			mp.Append("0x02")

			mp.Restore(block)

			open := mp.Copy()
			if len(open.Transactions) != 2 || open.Transactions[0] != "0x01" || open.Transactions[1] != "0x02" {
				t.Fatalf("\t%s\tTest 1:\tShould keep every hash in order: %v", failed, open.Transactions)
			}
			if open.TimeStamp != 100 {
				t.Fatalf("\t%s\tTest 1:\tShould restore the open timestamp: %d", failed, open.TimeStamp)
			}
			t.Logf("\t%s\tTest 1:\tShould restore the block ahead of newer hashes.", success)
		}

		t.Logf("\tTest 2:\tWhen truncating the open block.")
		{
			mp := mempool.New(100)
			mp.Append("0x01")
			mp.Append("0x02")

			mp.Truncate(300)

			open := mp.Copy()
			if mp.Count() != 0 || open.TimeStamp != 300 {
				t.Fatalf("\t%s\tTest 2:\tShould open an empty block at the new time: %+v", failed, open)
			}
			t.Logf("\t%s\tTest 2:\tShould open an empty block at the new time.", success)
		}
	}
}

func TestConcurrentDrain(t *testing.T) {
	t.Log("Given the need to never lose or duplicate a hash across drains.")
	{
		t.Logf("\tTest 0:\tWhen appends and drains run concurrently.")
		{
			const appenders = 8
			const perAppender = 200

			mp := mempool.New(0)

			var mu sync.Mutex
			var drained [][]string

			var wg sync.WaitGroup
			wg.Add(appenders)
			for i := range appenders {
				go func() {
					defer wg.Done()
					for j := range perAppender {
						mp.Append(fmt.Sprintf("%d:%d", i, j))
					}
				}()
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				for k := 0; k < 50; k++ {
					block := mp.DrainAndReset(int64(k))
					mu.Lock()
					drained = append(drained, block.Transactions)
					mu.Unlock()
				}
			}()

			wg.Wait()
			<-done
			drained = append(drained, mp.DrainAndReset(999).Transactions)

			seen := make(map[string]int)
			for _, trans := range drained {
				for _, hash := range trans {
					seen[hash]++
				}
			}

			if len(seen) != appenders*perAppender {
				t.Fatalf("\t%s\tTest 0:\tShould see every hash, got %d.", failed, len(seen))
			}
			for hash, n := range seen {
				if n != 1 {
					t.Fatalf("\t%s\tTest 0:\tShould see %s exactly once, got %d.", failed, hash, n)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould see every hash exactly once.", success)
		}
	}
}
