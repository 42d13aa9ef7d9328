package transaction

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages the durable transaction log. Records are append-only and
// never updated or deleted.
type Repository interface {
	// Append stores the record and fills in its monotonically increasing ID.
	Append(ctx context.Context, record *Record) error

	// ListByAccount returns records for an account in chronological order,
	// oldest first. Paged and restartable: the same query with no intervening
	// mutation returns the same sequence.
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*Record, error)

	CountByAccount(ctx context.Context, accountNumber string) (int64, error)

	WithTx(tx pgx.Tx) Repository
}
