package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for
// PostgreSQL. The transactions table is append-only.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction log repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so log appends commit
// atomically with the balance change they describe.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores the record and fills in its monotonically increasing ID
func (r *TransactionRepository) Append(ctx context.Context, record *transaction.Record) error {
	query := `
		INSERT INTO transactions (transaction_id, account_number, type, amount, details, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		record.TransactionID,
		record.AccountNumber,
		record.Type,
		record.Amount,
		record.Details,
		record.RecordedAt,
	).Scan(&record.ID)

	if err != nil {
		r.logger.Error("Failed to append transaction record",
			"transaction_id", record.TransactionID.String(),
			"account_number", record.AccountNumber,
			"error", err,
		)
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	return nil
}

// ListByAccount returns records for an account ordered oldest first. Paging by
// the monotonic id keeps repeated queries restartable.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*transaction.Record, error) {
	query := `
		SELECT id, transaction_id, account_number, type, amount, details, recorded_at
		FROM transactions
		WHERE account_number = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountNumber, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transaction records", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to list transaction records: %w", err)
	}
	defer rows.Close()

	var records []*transaction.Record
	for rows.Next() {
		var record transaction.Record
		err := rows.Scan(
			&record.ID,
			&record.TransactionID,
			&record.AccountNumber,
			&record.Type,
			&record.Amount,
			&record.Details,
			&record.RecordedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction record", "error", err)
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transaction records", "error", err)
		return nil, fmt.Errorf("error iterating over transaction records: %w", err)
	}

	return records, nil
}

// CountByAccount counts the log records for an account
func (r *TransactionRepository) CountByAccount(ctx context.Context, accountNumber string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_number = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountNumber).Scan(&count); err != nil {
		r.logger.Error("Failed to count transaction records", "account_number", accountNumber, "error", err)
		return 0, fmt.Errorf("failed to count transaction records: %w", err)
	}

	return count, nil
}
