// Package private maintains the group of handlers for operators of the node.
package private

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/ledger/database"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	miners := h.State.RetrieveMiners()
	names := make([]string, len(miners))
	for i, miner := range miners {
		names[i] = h.NS.Lookup(miner)
	}

	status := nodeStatus{
		Genesis:      h.State.RetrieveGenesis(),
		BlockHeight:  h.State.BlockHeight(),
		Uncommitted:  h.State.QueryMempoolLength(),
		Miners:       names,
		MineInterval: h.State.RetrieveMineInterval().String(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// BlocksByNumber returns all the blocks based on the specified to/from values.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := strconv.ParseUint(web.Param(r, "from"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := strconv.ParseUint(web.Param(r, "to"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if height := h.State.BlockHeight(); to >= height {
		if height == 0 {
			return web.Respond(ctx, w, []database.MinedBlock{}, http.StatusOK)
		}
		to = height - 1
	}

	blocks := []database.MinedBlock{}
	for i := from; i <= to; i++ {
		block, err := h.State.QueryBlock(i)
		if err != nil {
			return errs.NewLedger(err)
		}
		blocks = append(blocks, block)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

type nodeStatus struct {
	Genesis      string   `json:"genesis"`
	BlockHeight  uint64   `json:"block_height"`
	Uncommitted  int      `json:"uncommitted"`
	Miners       []string `json:"miners"`
	MineInterval string   `json:"mine_interval"`
}
