package state

import (
	"errors"
	"fmt"
)

// Set of errors returned by the ledger.
var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrInvalidAmount = errors.New("amount must not be negative")
	ErrInvariant     = errors.New("ledger invariant violated")
)

// PersistenceError is returned when a mined block can't be written to
// storage. The in-memory effects of the block have been rolled back.
type PersistenceError struct {
	Height uint64
	Err    error
}

// Error implements the error interface.
func (pe *PersistenceError) Error() string {
	return fmt.Sprintf("commit block %d: %s", pe.Height, pe.Err)
}

// Unwrap returns the storage error.
func (pe *PersistenceError) Unwrap() error {
	return pe.Err
}

// IsPersistenceError checks if an error of type PersistenceError exists.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
