package public

import (
	"github.com/ardanlabs/ledger/business/sys/validate"
)

// sendRequest is what a client posts to submit a transaction. Amount is a
// pointer so a missing amount can be told apart from zero.
type sendRequest struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Amount *int64 `json:"amount" validate:"required"`
}

// Validate checks the request is complete.
func (sr sendRequest) Validate() error {
	return validate.Check(sr)
}

type sendResponse struct {
	Hash    string `json:"hash"`
	Success bool   `json:"success"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type genesisResponse struct {
	Genesis string   `json:"genesis"`
	Miners  []string `json:"miners"`
}
