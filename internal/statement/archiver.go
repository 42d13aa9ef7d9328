// Package statement implements the archiver service: it consumes committed
// transaction events and writes them into the statement archive. The event
// stream delivers at least once, so archiving is idempotent on transaction ID.
package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corebank/ledger/internal/domain/statement"
	"github.com/corebank/ledger/internal/domain/transaction"
)

// ArchivingService archives one committed transaction record.
type ArchivingService interface {
	Archive(ctx context.Context, record *transaction.Record) error
}

// Archiver implements ArchivingService over the statement archive.
type Archiver struct {
	statements statement.Repository
	logger     *slog.Logger
}

// NewArchiver creates an archiver over the statement repository.
func NewArchiver(logger *slog.Logger, statements statement.Repository) *Archiver {
	return &Archiver{
		statements: statements,
		logger:     logger,
	}
}

// Archive writes the record into the statement archive. A record that was
// already archived is treated as success so redelivered events commit their
// offset.
func (a *Archiver) Archive(ctx context.Context, record *transaction.Record) error {
	entry := statement.FromRecord(record)

	err := a.statements.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, statement.ErrDuplicateEntry{}) {
			a.logger.Info("Statement entry already archived, skipping",
				"transaction_id", record.TransactionID.String(),
				"account_number", record.AccountNumber,
			)
			return nil
		}
		return fmt.Errorf("failed to archive statement entry %s: %w", record.TransactionID.String(), err)
	}

	a.logger.Debug("Archived statement entry",
		"transaction_id", record.TransactionID.String(),
		"account_number", record.AccountNumber,
		"type", string(record.Type),
	)
	return nil
}
