// Package statement defines the read-optimized statement archive fed from the
// transaction event stream. The durable source of truth stays in the
// transaction log; the archive only serves statement queries.
package statement

import (
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/domain/transaction"
)

// Entry is an archived copy of a committed transaction record.
type Entry struct {
	TransactionID uuid.UUID        `json:"transaction_id" bson:"transaction_id"`
	RecordID      int64            `json:"record_id" bson:"record_id"`
	AccountNumber string           `json:"account_number" bson:"account_number"`
	Type          transaction.Type `json:"type" bson:"type"`
	Amount        int64            `json:"amount" bson:"amount"`
	Details       string           `json:"details" bson:"details"`
	RecordedAt    time.Time        `json:"recorded_at" bson:"recorded_at"`
	ArchivedAt    time.Time        `json:"archived_at" bson:"archived_at"`
}

// FromRecord builds an archive entry from a committed transaction record.
func FromRecord(record *transaction.Record) *Entry {
	return &Entry{
		TransactionID: record.TransactionID,
		RecordID:      record.ID,
		AccountNumber: record.AccountNumber,
		Type:          record.Type,
		Amount:        record.Amount,
		Details:       record.Details,
		RecordedAt:    record.RecordedAt,
		ArchivedAt:    time.Now().UTC(),
	}
}
