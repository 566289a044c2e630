package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/ledger/selector"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type ledgerTest struct {
	t     *testing.T
	app   http.Handler
	state *state.State
}

func newLedgerTest(t *testing.T) *ledgerTest {
	st, err := state.New(state.Config{
		Genesis:        "genesis",
		Miners:         []string{"miner1"},
		MineFee:        5,
		MineInterval:   time.Second,
		SelectStrategy: selector.StrategyRoundRobin,
		Storage:        memory.New(),
		Clock:          clockwork.NewFakeClock(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
	}

	ns, err := nameservice.New("")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
	}

	app := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})

	return &ledgerTest{t: t, app: app, state: st}
}

func (lt *ledgerTest) do(method string, path string, body string, resp any) int {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	lt.app.ServeHTTP(w, r)

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			lt.t.Fatalf("\t%s\tShould be able to unmarshal the response for %s %s: %v", failed, method, path, err)
		}
	}

	return w.Code
}

// =============================================================================

func Test_Ledger(t *testing.T) {
	lt := newLedgerTest(t)

	t.Log("Given the need to use the ledger over HTTP.")
	{
		var hash string

		t.Logf("\tTest 0:\tWhen sending value from genesis.")
		{
			var resp struct {
				Hash    string `json:"hash"`
				Success bool   `json:"success"`
			}
			code := lt.do(http.MethodPost, "/transaction", `{"from":"genesis","to":"alice","amount":100}`, &resp)
			if code != http.StatusOK || !resp.Success || resp.Hash == "" {
				t.Fatalf("\t%s\tTest 0:\tShould get a 200 with the hash: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould get a 200 with the hash.", success)
			hash = resp.Hash

			var account database.AccountResponse
			code = lt.do(http.MethodGet, "/address/alice", "", &account)
			if code != http.StatusOK || account.Balance != 100 || len(account.Transactions) != 1 || account.Transactions[0] != hash {
				t.Fatalf("\t%s\tTest 0:\tShould see the balance of alice: %d %+v", failed, code, account)
			}
			t.Logf("\t%s\tTest 0:\tShould see the balance of alice.", success)

			var tx database.SignedTx
			code = lt.do(http.MethodGet, "/transaction/"+hash, "", &tx)
			if code != http.StatusOK || tx.From != "genesis" || tx.To != "alice" || tx.Amount != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould find the transaction: %d %+v", failed, code, tx)
			}
			t.Logf("\t%s\tTest 0:\tShould find the transaction.", success)

			resp.Hash, resp.Success = "", false
			code = lt.do(http.MethodPost, "/transaction", `{"from":"genesis","to":"bob","amount":5,"memo":"lunch"}`, &resp)
			if code != http.StatusOK || !resp.Success || resp.Hash == "" {
				t.Fatalf("\t%s\tTest 0:\tShould ignore fields it doesn't know: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould ignore fields it doesn't know.", success)
		}

		t.Logf("\tTest 1:\tWhen the request can't be honored.")
		{
			var resp errs.Response
			code := lt.do(http.MethodPost, "/transaction", `{"from":"alice","to":"bob"}`, &resp)
			if code != http.StatusInternalServerError || resp.Fields["amount"] == "" {
				t.Fatalf("\t%s\tTest 1:\tShould get a 500 naming the missing amount: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould get a 500 naming the missing amount.", success)

			resp = errs.Response{}
			code = lt.do(http.MethodPost, "/transaction", `{"from":"alice","to":"bob","amount":1000}`, &resp)
			if code != http.StatusInternalServerError || !strings.Contains(resp.Error, "insufficient balance") {
				t.Fatalf("\t%s\tTest 1:\tShould get a 500 for the insufficient balance: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould get a 500 for the insufficient balance.", success)

			resp = errs.Response{}
			code = lt.do(http.MethodGet, "/transaction/0x00", "", &resp)
			if code != http.StatusInternalServerError || !strings.Contains(resp.Error, "not found") {
				t.Fatalf("\t%s\tTest 1:\tShould get a 500 for an unknown hash: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould get a 500 for an unknown hash.", success)

			resp = errs.Response{}
			code = lt.do(http.MethodGet, "/block/0", "", &resp)
			if code != http.StatusInternalServerError {
				t.Fatalf("\t%s\tTest 1:\tShould get a 500 for a block not mined yet: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould get a 500 for a block not mined yet.", success)
		}

		t.Logf("\tTest 2:\tWhen a block has been mined.")
		{
			if _, err := lt.state.MineNewBlock(); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mine: %v", failed, err)
			}

			var block database.MinedBlock
			code := lt.do(http.MethodGet, "/block/0", "", &block)
			if code != http.StatusOK || block.Height != 0 || block.Miner != "miner1" || len(block.Transactions) != 3 {
				t.Fatalf("\t%s\tTest 2:\tShould get the block: %d %+v", failed, code, block)
			}
			t.Logf("\t%s\tTest 2:\tShould get the block.", success)

			var open database.Block
			code = lt.do(http.MethodGet, "/v1/mempool", "", &open)
			if code != http.StatusOK || len(open.Transactions) != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould get an empty open block: %d %+v", failed, code, open)
			}
			t.Logf("\t%s\tTest 2:\tShould get an empty open block.", success)
		}

		t.Logf("\tTest 3:\tWhen restarting the ledger.")
		{
			var resp struct {
				Success bool `json:"success"`
			}
			code := lt.do(http.MethodPost, "/restart", "", &resp)
			if code != http.StatusOK || !resp.Success {
				t.Fatalf("\t%s\tTest 3:\tShould get a 200: %d %+v", failed, code, resp)
			}
			t.Logf("\t%s\tTest 3:\tShould get a 200.", success)

			if lt.state.BlockHeight() != 0 {
				t.Fatalf("\t%s\tTest 3:\tShould have an empty chain.", failed)
			}

			var account database.AccountResponse
			lt.do(http.MethodGet, "/address/alice", "", &account)
			if account.Balance != 0 || len(account.Transactions) != 0 {
				t.Fatalf("\t%s\tTest 3:\tShould forget alice: %+v", failed, account)
			}
			t.Logf("\t%s\tTest 3:\tShould forget everything.", success)
		}
	}
}
