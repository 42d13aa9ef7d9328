package ledger

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corebank/ledger/internal/domain/shared"
)

// PostgreSQL error codes treated as transient: the operation rolled back
// cleanly and may be re-executed.
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
	lockNotAvailableCode     = "55P03" // raised when lock_timeout expires
)

// isTransient reports whether the storage error is worth retrying with the
// whole commit unit re-executed from scratch.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case serializationFailureCode, deadlockDetectedCode, lockNotAvailableCode:
			return true
		}
	}
	return false
}

// isLockTimeout reports whether the error is a lock_timeout expiry, which is
// surfaced to callers as ErrBusy rather than ErrStorageUnavailable.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == lockNotAvailableCode
}

// classifyExhausted maps the last transient error after retry exhaustion onto
// the caller-facing taxonomy.
func classifyExhausted(err error) error {
	if isLockTimeout(err) {
		return shared.ErrBusy
	}
	return shared.ErrStorageUnavailable
}
