// Package transaction defines the append-only transaction log: one immutable
// record per balance change, two per transfer (one for each side).
package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger/internal/domain/shared"
)

// Type classifies a financial mutation.
type Type string

const (
	TypeCredit      Type = "CREDIT"
	TypeDebit       Type = "DEBIT"
	TypeTransferOut Type = "TRANSFER_OUT"
	TypeTransferIn  Type = "TRANSFER_IN"
)

// Details annotations written by the engine. Transfer details reference the
// counterparty account number.
const (
	DetailsCredited = "Amount credited"
	DetailsDebited  = "Amount debited"
)

// Record is one entry in the transaction log. ID is assigned by the store on
// append and increases monotonically; RecordedAt is set by the engine, never
// by the caller.
type Record struct {
	ID            int64     `json:"id" bson:"id"`
	TransactionID uuid.UUID `json:"transaction_id" bson:"transaction_id"`
	AccountNumber string    `json:"account_number" bson:"account_number"`
	Type          Type      `json:"type" bson:"type"`
	Amount        int64     `json:"amount" bson:"amount"`
	Details       string    `json:"details" bson:"details"`
	RecordedAt    time.Time `json:"recorded_at" bson:"recorded_at"`
}

// NewRecord builds a log record for a single balance change. The store assigns
// the monotonic ID on append.
func NewRecord(accountNumber string, typ Type, amount int64, details string) (*Record, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	return &Record{
		TransactionID: uuid.New(),
		AccountNumber: accountNumber,
		Type:          typ,
		Amount:        amount,
		Details:       details,
		RecordedAt:    time.Now().UTC(),
	}, nil
}
