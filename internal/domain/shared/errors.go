// Package shared holds the error taxonomy common to the ledger engine and its
// collaborators. Validation errors are detected before any mutation and are
// never retried; ErrBusy and ErrStorageUnavailable describe the storage layer
// after the engine has exhausted its own bounded retries.
package shared

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive amount or an opening balance
	// below the configured minimum.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidProfile indicates malformed profile data, e.g. a bad email.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrAccountInactive indicates a mutating operation against a deactivated
	// account.
	ErrAccountInactive = errors.New("account is inactive")

	// ErrInsufficientFunds indicates a debit or transfer exceeding the current
	// balance. The stored balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidOperation indicates a structurally invalid request, such as a
	// self-transfer.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrBusy indicates a row-lock acquisition timed out. The operation had no
	// effect and may be retried by the caller.
	ErrBusy = errors.New("account is busy, retry later")

	// ErrStorageUnavailable indicates the storage layer kept failing after
	// bounded retries. No partial state is left behind.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidCredentials indicates authentication failure or a session
	// identity not bound to the requested account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
