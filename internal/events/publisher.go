// Package events drains the transactional outbox to the Kafka event stream.
// A transaction record becomes visible to downstream consumers only after its
// commit, and the poller retries publication until it succeeds or the attempt
// bound is reached.
package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corebank/ledger/internal/domain/outbox"
	"github.com/corebank/ledger/internal/platform/messaging/producers"
)

// EventPublisher publishes one outbox message to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// OutboxPublisher implements EventPublisher over the Kafka producer.
type OutboxPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewOutboxPublisher creates a new publisher
func NewOutboxPublisher(
	logger *slog.Logger,
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
) *OutboxPublisher {
	return &OutboxPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Publish sends the message's transaction record to the event stream and
// marks the message processed. A payload that cannot be decoded is marked
// FAILED_TO_PUBLISH immediately since retrying cannot fix it.
func (p *OutboxPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	record, err := message.Record()
	if err != nil {
		p.logger.Error("Failed to decode transaction record from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to mark outbox message FAILED_TO_PUBLISH after decode error",
				"outbox_id", message.ID, "update_error", updateErr,
			)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	// Keyed by account number: one account's events stay ordered.
	if err := p.producer.Publish(ctx, record.AccountNumber, record); err != nil {
		return fmt.Errorf("failed to publish outbox %d to event stream: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Event published but failed to mark outbox message PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w",
			message.TransactionID, message.ID, err)
	}

	p.logger.Debug("Outbox message published and marked as PROCESSED",
		"outbox_id", message.ID, "transaction_id", message.TransactionID,
	)
	return nil
}
