// Package mongo provides the MongoDB implementation of the statement archive.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corebank/ledger/internal/domain/statement"
)

const (
	// StatementCollectionName is the name of the statement collection in MongoDB
	StatementCollectionName = "statement_entries"
)

// StatementRepository implements the statement.Repository interface for MongoDB
type StatementRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewStatementRepository creates a new MongoDB statement archive repository
func NewStatementRepository(logger *slog.Logger, db *mongo.Database) statement.Repository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new statement entry after checking for duplicates.
// Returns ErrDuplicateEntry if an entry with the same transaction ID exists;
// the event stream is at-least-once so duplicates are expected.
func (r *StatementRepository) Create(ctx context.Context, entry *statement.Entry) error {
	collection := r.db.Collection(StatementCollectionName)

	existingEntry, err := r.GetByTransactionID(ctx, entry.TransactionID)
	if err != nil && !errors.Is(err, statement.ErrEntryNotFound{}) {
		r.logger.Error("Failed to check for existing statement entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing statement entry: %w", err)
	}

	if existingEntry != nil {
		return statement.ErrDuplicateEntry{TransactionID: entry.TransactionID}
	}

	_, err = collection.InsertOne(ctx, entry)
	if err != nil {
		r.logger.Error("Failed to create statement entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create statement entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a statement entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists for the given transaction.
func (r *StatementRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*statement.Entry, error) {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var entry statement.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, statement.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get statement entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get statement entry: %w", err)
	}

	return &entry, nil
}

// GetByAccount retrieves paginated statement entries for an account.
// Results are sorted by record ID in descending order (newest first), the
// order a statement is read in.
func (r *StatementRepository) GetByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*statement.Entry, error) {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{"account_number": accountNumber}
	opts := options.Find().
		SetSort(bson.M{"record_id": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get statement entries",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to get statement entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*statement.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode statement entries",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to decode statement entries: %w", err)
	}

	return entries, nil
}

// CountByAccount counts the total number of statement entries for an account
func (r *StatementRepository) CountByAccount(ctx context.Context, accountNumber string) (int64, error) {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{"account_number": accountNumber}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count statement entries",
			"account_number", accountNumber,
			"error", err)
		return 0, fmt.Errorf("failed to count statement entries: %w", err)
	}

	return count, nil
}

// GetByTimeRange retrieves paginated statement entries within the specified
// time window, newest first.
func (r *StatementRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*statement.Entry, error) {
	collection := r.db.Collection(StatementCollectionName)

	filter := bson.M{
		"recorded_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"recorded_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get statement entries by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get statement entries by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*statement.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode statement entries",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode statement entries: %w", err)
	}

	return entries, nil
}
