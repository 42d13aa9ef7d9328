package statement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages statement archive persistence. The event stream delivers
// at-least-once, so Create must reject duplicates by transaction ID.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	GetByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*Entry, error)
	CountByAccount(ctx context.Context, accountNumber string) (int64, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Entry, error)
}

// ErrEntryNotFound indicates a missing archive entry
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "statement entry not found: " + e.TransactionID.String()
}

// Is matches any ErrEntryNotFound when the target carries the nil UUID.
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates the entry was already archived.
type ErrDuplicateEntry struct {
	TransactionID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate statement entry: " + e.TransactionID.String()
}

// Is matches any ErrDuplicateEntry when the target carries the nil UUID.
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
