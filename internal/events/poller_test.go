package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/config"
	"github.com/corebank/ledger/internal/domain/outbox"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func newTestPoller(repo outbox.Repository, publisher EventPublisher) *Poller {
	return NewPoller(&config.OutboxConfig{
		PollingInterval:  1,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}, repo, publisher, testLogger())
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes every pending message", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		publisher := new(mockPublisher)
		poller := newTestPoller(repo, publisher)

		first := pendingMessage(t, 1, "1111111111")
		second := pendingMessage(t, 2, "2222222222")
		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{first, second}, nil).Once()
		publisher.On("Publish", ctx, first).Return(nil).Once()
		publisher.On("Publish", ctx, second).Return(nil).Once()

		err := poller.processPendingMessages(ctx)

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		publisher := new(mockPublisher)
		poller := newTestPoller(repo, publisher)

		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{}, nil).Once()

		err := poller.processPendingMessages(ctx)

		require.NoError(t, err)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("increments attempts on publish failure", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		publisher := new(mockPublisher)
		poller := newTestPoller(repo, publisher)

		message := pendingMessage(t, 3, "1111111111")
		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{message}, nil).Once()
		publisher.On("Publish", ctx, message).Return(errors.New("broker down")).Once()
		repo.On("IncrementAttempts", ctx, int64(3)).Return(nil).Once()

		err := poller.processPendingMessages(ctx)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("marks message failed after exhausting retry attempts", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		publisher := new(mockPublisher)
		poller := newTestPoller(repo, publisher)

		message := pendingMessage(t, 4, "1111111111")
		message.Attempts = 2 // This attempt is the third and last.
		repo.On("GetPending", ctx, 10).Return([]*outbox.Message{message}, nil).Once()
		publisher.On("Publish", ctx, message).Return(errors.New("broker down")).Once()
		repo.On("IncrementAttempts", ctx, int64(4)).Return(nil).Once()
		repo.On("UpdateStatus", ctx, int64(4), outbox.StatusFailedToPublish).Return(nil).Once()

		err := poller.processPendingMessages(ctx)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("surfaces fetch errors", func(t *testing.T) {
		repo := new(mockOutboxRepo)
		publisher := new(mockPublisher)
		poller := newTestPoller(repo, publisher)

		repo.On("GetPending", ctx, 10).Return(nil, errors.New("db down")).Once()

		err := poller.processPendingMessages(ctx)

		assert.Error(t, err)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
