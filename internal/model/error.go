package model

import (
	"errors"
	"fmt"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes surfaced in ErrorResponse.Code
const (
	CodeWalletUnavailable  = "WALLET_UNAVAILABLE"
	CodeInputMissing       = "INPUT_MISSING"
	CodeOwnershipMismatch  = "OWNERSHIP_MISMATCH"
	CodeAPIFailure         = "API_FAILURE"
	CodeTransactionFailure = "TRANSACTION_FAILURE"
	CodeNoComparison       = "NO_COMPARISON"
	CodeNothingToUpdate    = "NOTHING_TO_UPDATE"
	CodeUpdateInFlight     = "UPDATE_IN_FLIGHT"
	CodeUpdateDebounced    = "UPDATE_DEBOUNCED"
)

// Terminal errors for controller operations. The HTTP layer decides how each
// is presented; the controller only classifies.
var (
	ErrWalletUnavailable = errors.New("wallet bridge unavailable")
	ErrNoAddress         = errors.New("no address supplied and no wallet connected")
	ErrNoComparison      = errors.New("no comparison result, run a compare first")
	ErrNothingToUpdate   = errors.New("nothing to update")
	ErrUpdateInFlight    = errors.New("an update is already in flight")
	ErrUpdateDebounced   = errors.New("update requested too soon after the previous one")
	ErrAPIFailure        = errors.New("compare backend failure")
	ErrTransactionFailed = errors.New("transaction submission failed")
)

// OwnershipMismatchError rejects an update when the connected wallet does not
// own the compared address. Both addresses are part of the message so the
// user can see exactly which identity was checked against which record.
type OwnershipMismatchError struct {
	Connected string
	Compared  string
}

func (e *OwnershipMismatchError) Error() string {
	return fmt.Sprintf("connected wallet %s does not own compared address %s", e.Connected, e.Compared)
}

// IsOwnershipMismatch checks if error is OwnershipMismatchError
func IsOwnershipMismatch(err error) bool {
	var om *OwnershipMismatchError
	return errors.As(err, &om)
}
