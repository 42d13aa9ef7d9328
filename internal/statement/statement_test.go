package statement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain/statement"
	"github.com/corebank/ledger/internal/domain/transaction"
)

type mockStatementRepo struct {
	mock.Mock
}

func (m *mockStatementRepo) Create(ctx context.Context, entry *statement.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockStatementRepo) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*statement.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*statement.Entry), args.Error(1)
}

func (m *mockStatementRepo) GetByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*statement.Entry, error) {
	args := m.Called(ctx, accountNumber, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*statement.Entry), args.Error(1)
}

func (m *mockStatementRepo) CountByAccount(ctx context.Context, accountNumber string) (int64, error) {
	args := m.Called(ctx, accountNumber)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatementRepo) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*statement.Entry, error) {
	args := m.Called(ctx, startTime, endTime, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*statement.Entry), args.Error(1)
}

type mockDLQ struct {
	mock.Mock
}

func (m *mockDLQ) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *mockDLQ) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(t *testing.T) *transaction.Record {
	t.Helper()
	record, err := transaction.NewRecord("1234567890", transaction.TypeCredit, 500, transaction.DetailsCredited)
	require.NoError(t, err)
	record.ID = 42
	return record
}

func TestArchiver_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the archive entry", func(t *testing.T) {
		repo := new(mockStatementRepo)
		archiver := NewArchiver(testLogger(), repo)
		record := testRecord(t)

		repo.On("Create", ctx, mock.MatchedBy(func(entry *statement.Entry) bool {
			return entry.TransactionID == record.TransactionID &&
				entry.RecordID == 42 &&
				entry.AccountNumber == "1234567890" &&
				entry.Type == transaction.TypeCredit
		})).Return(nil).Once()

		require.NoError(t, archiver.Archive(ctx, record))
		repo.AssertExpectations(t)
	})

	t.Run("treats duplicates as success", func(t *testing.T) {
		repo := new(mockStatementRepo)
		archiver := NewArchiver(testLogger(), repo)
		record := testRecord(t)

		repo.On("Create", ctx, mock.Anything).
			Return(statement.ErrDuplicateEntry{TransactionID: record.TransactionID}).Once()

		require.NoError(t, archiver.Archive(ctx, record))
	})

	t.Run("surfaces storage errors", func(t *testing.T) {
		repo := new(mockStatementRepo)
		archiver := NewArchiver(testLogger(), repo)

		repo.On("Create", ctx, mock.Anything).Return(errors.New("mongo down")).Once()

		assert.Error(t, archiver.Archive(ctx, testRecord(t)))
	})
}

func TestEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("archives a valid event", func(t *testing.T) {
		repo := new(mockStatementRepo)
		archiver := NewArchiver(testLogger(), repo)
		handler := NewEventHandler(testLogger(), archiver, nil)

		record := testRecord(t)
		value, err := json.Marshal(record)
		require.NoError(t, err)

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		require.NoError(t, handler.HandleMessage(ctx, []byte(record.AccountNumber), value))
		repo.AssertExpectations(t)
	})

	t.Run("routes malformed payloads to the DLQ and commits", func(t *testing.T) {
		dlq := new(mockDLQ)
		handler := NewEventHandler(testLogger(), NewArchiver(testLogger(), new(mockStatementRepo)), dlq)

		value := []byte(`{"broken`)
		dlq.On("PublishToDLQ", ctx, "1234567890", value, mock.AnythingOfType("string")).Return(nil).Once()

		require.NoError(t, handler.HandleMessage(ctx, []byte("1234567890"), value))
		dlq.AssertExpectations(t)
	})

	t.Run("returns the error when the DLQ is unavailable", func(t *testing.T) {
		dlq := new(mockDLQ)
		handler := NewEventHandler(testLogger(), NewArchiver(testLogger(), new(mockStatementRepo)), dlq)

		value := []byte(`{"broken`)
		dlq.On("PublishToDLQ", ctx, "1234567890", value, mock.AnythingOfType("string")).
			Return(errors.New("dlq broker down")).Once()

		assert.Error(t, handler.HandleMessage(ctx, []byte("1234567890"), value))
	})

	t.Run("leaves the offset uncommitted on archive failure", func(t *testing.T) {
		repo := new(mockStatementRepo)
		handler := NewEventHandler(testLogger(), NewArchiver(testLogger(), repo), nil)

		record := testRecord(t)
		value, err := json.Marshal(record)
		require.NoError(t, err)

		repo.On("Create", ctx, mock.Anything).Return(errors.New("mongo down")).Once()

		assert.Error(t, handler.HandleMessage(ctx, []byte(record.AccountNumber), value))
	})
}

type countingArchiver struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingArchiver) Archive(ctx context.Context, record *transaction.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestWorkerPoolArchiver(t *testing.T) {
	t.Run("delegates to the base archiver", func(t *testing.T) {
		base := &countingArchiver{}
		pool, err := NewWorkerPoolArchiver(base, WorkerPoolConfig{Size: 4}, testLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		require.NoError(t, pool.Archive(context.Background(), testRecord(t)))
		assert.Equal(t, 1, base.calls)
		assert.Equal(t, 4, pool.Capacity())
	})

	t.Run("propagates the base archiver's error", func(t *testing.T) {
		base := &countingArchiver{err: errors.New("mongo down")}
		pool, err := NewWorkerPoolArchiver(base, WorkerPoolConfig{Size: 2}, testLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		assert.Error(t, pool.Archive(context.Background(), testRecord(t)))
	})

	t.Run("handles concurrent submissions", func(t *testing.T) {
		base := &countingArchiver{}
		pool, err := NewWorkerPoolArchiver(base, WorkerPoolConfig{Size: 4}, testLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, pool.Archive(context.Background(), testRecord(t)))
			}()
		}
		wg.Wait()

		assert.Equal(t, 16, base.calls)
	})
}
