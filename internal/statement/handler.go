package statement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/platform/messaging/producers"
)

// EventHandler handles incoming transaction events from Kafka.
type EventHandler struct {
	archiver ArchivingService
	dlq      producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewEventHandler creates a new handler
func NewEventHandler(
	logger *slog.Logger,
	archiver ArchivingService,
	dlq producers.DeadLetterPublisher,
) *EventHandler {
	return &EventHandler{
		archiver: archiver,
		dlq:      dlq,
		logger:   logger,
	}
}

// HandleMessage processes one Kafka message. A malformed payload goes to the
// DLQ so its offset can be committed; archive failures are returned uncommitted
// so the event is redelivered.
func (h *EventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var record transaction.Record
	if err := json.Unmarshal(value, &record); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal transaction record from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.dlq != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.dlq.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received transaction event for archiving",
		"transaction_id", record.TransactionID.String(),
		"account_number", record.AccountNumber,
		"type", string(record.Type),
		"amount", record.Amount,
	)

	if err := h.archiver.Archive(ctx, &record); err != nil {
		h.logger.Error("Failed to archive transaction event",
			"transaction_id", record.TransactionID.String(),
			"account_number", record.AccountNumber,
			"error", err,
		)
		return fmt.Errorf("archiving transaction %s failed: %w", record.TransactionID.String(), err)
	}

	return nil // Success, commit offset
}
