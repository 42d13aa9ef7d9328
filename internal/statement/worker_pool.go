package statement

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/corebank/ledger/internal/domain/transaction"
)

// WorkerPoolArchiver fans archive work out to a bounded worker pool while
// keeping the caller's at-least-once semantics: Archive blocks until the
// worker reports the outcome so the consumer only commits finished offsets.
type WorkerPoolArchiver struct {
	base   ArchivingService
	pool   *ants.Pool
	logger *slog.Logger
	// Guards the in-flight result channels.
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiver(
	base ArchivingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiver, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiver{
		base:    base,
		pool:    pool,
		logger:  logger,
		results: make(map[string]chan error),
	}, nil
}

// Archive submits the record to the worker pool and waits for the outcome.
func (s *WorkerPoolArchiver) Archive(ctx context.Context, record *transaction.Record) error {
	s.logger.Debug("Submitting record to archive worker pool",
		"transaction_id", record.TransactionID.String(),
		"account_number", record.AccountNumber,
	)

	resultChan := make(chan error, 1)

	transactionID := record.TransactionID.String()
	s.mu.Lock()
	s.results[transactionID] = resultChan
	s.mu.Unlock()

	// Copy the record so the worker never shares memory with the caller.
	recordCopy := *record

	err := s.pool.Submit(func() {
		err := s.base.Archive(ctx, &recordCopy)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit record to archive worker pool",
			"transaction_id", record.TransactionID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiver) Shutdown() {
	s.logger.Info("Shutting down archive worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiver) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiver) Capacity() int {
	return s.pool.Cap()
}
