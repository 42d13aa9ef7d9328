package account

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations. Balance mutations go
// through AdjustBalance only, which enforces the non-negative post-condition
// in a single atomic statement.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByNumber(ctx context.Context, number string) (*Account, error)

	// LockForUpdate acquires a pessimistic row lock for transaction processing.
	// Must be called inside a database transaction.
	LockForUpdate(ctx context.Context, number string) (*Account, error)

	// AdjustBalance atomically applies balance += delta subject to the
	// post-condition balance >= 0, returning the new balance. A violated
	// post-condition surfaces shared.ErrInsufficientFunds with the stored
	// balance unchanged.
	AdjustBalance(ctx context.Context, number string, delta int64) (int64, error)

	// UpdateProfile replaces the non-financial fields only.
	UpdateProfile(ctx context.Context, number string, profile Profile) error

	SetPasswordHash(ctx context.Context, number string, hash string) error
	SetActive(ctx context.Context, number string, active bool) error

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account
type ErrAccountNotFound struct {
	AccountNumber string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountNumber
}

// Is matches any ErrAccountNotFound when the target carries no account number,
// otherwise matches on the number.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountNumber == "" {
		return true
	}
	return e.AccountNumber == t.AccountNumber
}

// ErrDuplicateAccountNumber indicates an account-number uniqueness violation
// at creation time. The engine retries generation on this error.
type ErrDuplicateAccountNumber struct {
	AccountNumber string
}

func (e ErrDuplicateAccountNumber) Error() string {
	return "account number already exists: " + e.AccountNumber
}

// Is matches any ErrDuplicateAccountNumber when the target carries no number.
func (e ErrDuplicateAccountNumber) Is(target error) bool {
	t, ok := target.(ErrDuplicateAccountNumber)
	if !ok {
		return false
	}
	if t.AccountNumber == "" {
		return true
	}
	return e.AccountNumber == t.AccountNumber
}
