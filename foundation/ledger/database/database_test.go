package database_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_AssembleBlocks(t *testing.T) {
	tx1 := database.NewTx("genesis", "alice", 100, 0, 1000).Sign(0)
	tx2 := database.NewTx("alice", "bob", 40, 0, 1001).Sign(0)
	tx3 := database.NewTx("genesis", "miner1", 5, 1, 1002).Sign(0)
	tx4 := database.NewTx("genesis", "miner2", 5, 2, 1010).Sign(1)

	blocks := []database.MinedBlock{
		{Height: 1, Miner: "miner2", TimeStamp: 1005},
		{Height: 0, Miner: "miner1", TimeStamp: 999},
		{Height: 2, Miner: "miner1", TimeStamp: 1011},
	}

	t.Log("Given the need to rebuild block membership from stored transactions.")
	{
		t.Logf("\tTest 0:\tWhen transactions are loaded in any order.")
		{
			out := database.AssembleBlocks(blocks, []database.SignedTx{tx4, tx3, tx2, tx1})

			if len(out) != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould get back three blocks: %d", failed, len(out))
			}
			t.Logf("\t%s\tTest 0:\tShould get back three blocks.", success)

			for i, blk := range out {
				if blk.Height != uint64(i) {
					t.Fatalf("\t%s\tTest 0:\tShould have blocks ordered by height: got %d at %d", failed, blk.Height, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould have blocks ordered by height.", success)

			exp := [][]string{
				{tx1.Hash, tx2.Hash, tx3.Hash},
				{tx4.Hash},
				{},
			}
			for i, blk := range out {
				if diff := cmp.Diff(exp[i], blk.Transactions); diff != "" {
					t.Fatalf("\t%s\tTest 0:\tShould reassemble block %d membership:\n%s", failed, i, diff)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reassemble block membership.", success)
		}
	}
}

func Test_BlockHash(t *testing.T) {
	t.Log("Given the need to content address mined blocks.")
	{
		t.Logf("\tTest 0:\tWhen mining the same open block twice.")
		{
			open := database.Block{Transactions: []string{"0x01", "0x02"}, TimeStamp: 1000}

			b1 := database.NewMinedBlock(open, 0, "miner1")
			b2 := database.NewMinedBlock(open, 0, "miner1")
			if b1.Hash != b2.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould get the same hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same hash.", success)

			if b1.Hash != b1.ComputeHash() {
				t.Fatalf("\t%s\tTest 0:\tShould exclude the hash field from its own input.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould exclude the hash field from its own input.", success)

			b3 := database.NewMinedBlock(open, 0, "miner2")
			b4 := database.NewMinedBlock(open, 1, "miner1")
			if b1.Hash == b3.Hash || b1.Hash == b4.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould cover the miner and height in the hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould cover the miner and height in the hash.", success)
		}
	}
}
