// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/ledger/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Account returns the balance, transaction count and transactions for
// the address.
func (h Handlers) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := h.NS.Resolve(web.Param(r, "address"))

	resp := h.State.QueryAccount(address)

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transaction returns the transaction with the specified hash.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tx, err := h.State.QueryTransaction(web.Param(r, "hash"))
	if err != nil {
		return errs.NewLedger(err)
	}

	return web.Respond(ctx, w, tx, http.StatusOK)
}

// Block returns the block at the specified height.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	height, err := strconv.ParseUint(web.Param(r, "height"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusInternalServerError)
	}

	block, err := h.State.QueryBlock(height)
	if err != nil {
		return errs.NewLedger(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Send moves value between two accounts.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req sendRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}

	from := h.NS.Resolve(req.From)
	to := h.NS.Resolve(req.To)

	h.Log.Infow("send", "traceid", v.TraceID, "from", from, "to", to, "amount", *req.Amount)

	hash, err := h.State.Send(from, to, *req.Amount)
	if err != nil {
		return errs.NewLedger(err)
	}

	resp := sendResponse{
		Hash:    hash,
		Success: true,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Restart wipes the ledger and starts over from an empty chain.
func (h Handlers) Restart(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("restart", "traceid", v.TraceID)

	if err := h.State.Restart(); err != nil {
		return errs.NewLedger(err)
	}

	return web.Respond(ctx, w, successResponse{Success: true}, http.StatusOK)
}

// Mempool returns the open block.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryMempool(), http.StatusOK)
}

// Genesis returns the genesis address and the configured miners.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := genesisResponse{
		Genesis: h.State.RetrieveGenesis(),
		Miners:  h.State.RetrieveMiners(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
