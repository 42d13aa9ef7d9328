// Package ledger implements the core engine behind every financial operation.
// Each operation runs as a single PostgreSQL transaction: row locks, balance
// adjustments, transaction log appends, and outbox writes all commit or roll
// back together. Transient storage errors are retried with bounded attempts
// before surfacing to the caller.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/corebank/ledger/internal/config"
	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/outbox"
	"github.com/corebank/ledger/internal/domain/shared"
	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/platform/persistence"
)

// Attempts to find an unused account number before giving up.
const maxNumberAttempts = 5

// Receipt describes a completed credit or debit: the appended log record plus
// the balance after the mutation.
type Receipt struct {
	Record     *transaction.Record `json:"record"`
	NewBalance int64               `json:"new_balance"`
}

// TransferReceipt describes a completed transfer. Both records were appended
// and both balances updated in the same commit.
type TransferReceipt struct {
	OutRecord   *transaction.Record `json:"out_record"`
	InRecord    *transaction.Record `json:"in_record"`
	FromBalance int64               `json:"from_balance"`
	ToBalance   int64               `json:"to_balance"`
}

// Engine coordinates accounts, the transaction log, and the outbox. It owns
// transaction boundaries; repositories never begin or commit on their own.
type Engine struct {
	db       persistence.TxBeginner
	accounts account.Repository
	records  transaction.Repository
	outbox   outbox.Repository
	logger   *slog.Logger
	cfg      config.LedgerConfig
}

// NewEngine creates a ledger engine backed by the given stores.
func NewEngine(
	logger *slog.Logger,
	db persistence.TxBeginner,
	accounts account.Repository,
	records transaction.Repository,
	outboxRepo outbox.Repository,
	cfg config.LedgerConfig,
) *Engine {
	return &Engine{
		db:       db,
		accounts: accounts,
		records:  records,
		outbox:   outboxRepo,
		logger:   logger,
		cfg:      cfg,
	}
}

// OpenAccount creates an account with a freshly generated number. Generation
// is retried on number collision; the uniqueness check is the store's, not an
// in-memory one.
func (e *Engine) OpenAccount(ctx context.Context, profile account.Profile, passwordHash string, openingBalance int64) (*account.Account, error) {
	if openingBalance < e.cfg.MinOpeningBalance {
		return nil, fmt.Errorf("%w: opening balance must be at least %d", shared.ErrInvalidAmount, e.cfg.MinOpeningBalance)
	}
	if err := account.ValidateProfile(profile); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := newAccountNumber()
		if err != nil {
			return nil, err
		}

		acc, err := account.New(number, profile, passwordHash, openingBalance)
		if err != nil {
			return nil, err
		}

		err = e.accounts.Create(ctx, acc)
		if err == nil {
			e.logger.Info("Account opened",
				"account_number", acc.AccountNumber,
				"opening_balance", acc.Balance,
			)
			return acc, nil
		}
		if errors.Is(err, account.ErrDuplicateAccountNumber{}) {
			e.logger.Warn("Account number collision, regenerating", "account_number", number)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: could not allocate a unique account number", shared.ErrStorageUnavailable)
}

// GetAccount returns the caller-facing projection of an account.
func (e *Engine) GetAccount(ctx context.Context, number string) (*account.View, error) {
	acc, err := e.accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	view := acc.View()
	return &view, nil
}

// GetBalance returns the current balance of an account.
func (e *Engine) GetBalance(ctx context.Context, number string) (int64, error) {
	acc, err := e.accounts.GetByNumber(ctx, number)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// GetHistory returns a page of the account's transaction log, oldest first,
// together with the total record count.
func (e *Engine) GetHistory(ctx context.Context, number string, page, perPage int) ([]*transaction.Record, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	if _, err := e.accounts.GetByNumber(ctx, number); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	records, err := e.records.ListByAccount(ctx, number, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := e.records.CountByAccount(ctx, number)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Credit deposits amount into the account.
func (e *Engine) Credit(ctx context.Context, number string, amount int64) (*Receipt, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	var receipt *Receipt
	err := e.runAtomic(ctx, func(ctx context.Context, tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s", shared.ErrAccountInactive, number)
		}

		newBalance, err := accounts.AdjustBalance(ctx, number, amount)
		if err != nil {
			return err
		}

		record, err := e.appendWithOutbox(ctx, tx, number, transaction.TypeCredit, amount, transaction.DetailsCredited)
		if err != nil {
			return err
		}

		receipt = &Receipt{Record: record, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Credit applied",
		"account_number", number,
		"amount", amount,
		"transaction_id", receipt.Record.TransactionID.String(),
	)
	return receipt, nil
}

// Debit withdraws amount from the account. Insufficient funds reject the
// operation with no stored state changed.
func (e *Engine) Debit(ctx context.Context, number string, amount int64) (*Receipt, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	var receipt *Receipt
	err := e.runAtomic(ctx, func(ctx context.Context, tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s", shared.ErrAccountInactive, number)
		}
		if acc.Balance < amount {
			return shared.ErrInsufficientFunds
		}

		newBalance, err := accounts.AdjustBalance(ctx, number, -amount)
		if err != nil {
			return err
		}

		record, err := e.appendWithOutbox(ctx, tx, number, transaction.TypeDebit, amount, transaction.DetailsDebited)
		if err != nil {
			return err
		}

		receipt = &Receipt{Record: record, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Debit applied",
		"account_number", number,
		"amount", amount,
		"transaction_id", receipt.Record.TransactionID.String(),
	)
	return receipt, nil
}

// Transfer moves amount between two accounts. Both balance changes, both log
// records, and both outbox messages commit together or not at all. Rows are
// locked in ascending account-number order so two opposing transfers cannot
// deadlock each other.
func (e *Engine) Transfer(ctx context.Context, from, to string, amount int64) (*TransferReceipt, error) {
	if amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}
	if from == to {
		return nil, fmt.Errorf("%w: cannot transfer to the same account", shared.ErrInvalidOperation)
	}

	var receipt *TransferReceipt
	err := e.runAtomic(ctx, func(ctx context.Context, tx pgx.Tx) error {
		accounts := e.accounts.WithTx(tx)

		first, second := from, to
		if second < first {
			first, second = second, first
		}

		locked := make(map[string]*account.Account, 2)
		for _, number := range []string{first, second} {
			acc, err := accounts.LockForUpdate(ctx, number)
			if err != nil {
				return err
			}
			locked[number] = acc
		}

		source, dest := locked[from], locked[to]
		if !source.IsActive {
			return fmt.Errorf("%w: %s", shared.ErrAccountInactive, from)
		}
		if !dest.IsActive {
			return fmt.Errorf("%w: %s", shared.ErrAccountInactive, to)
		}
		if source.Balance < amount {
			return shared.ErrInsufficientFunds
		}

		fromBalance, err := accounts.AdjustBalance(ctx, from, -amount)
		if err != nil {
			return err
		}
		toBalance, err := accounts.AdjustBalance(ctx, to, amount)
		if err != nil {
			return err
		}

		outRecord, err := e.appendWithOutbox(ctx, tx, from, transaction.TypeTransferOut, amount, "Transferred to "+to)
		if err != nil {
			return err
		}
		inRecord, err := e.appendWithOutbox(ctx, tx, to, transaction.TypeTransferIn, amount, "Received from "+from)
		if err != nil {
			return err
		}

		receipt = &TransferReceipt{
			OutRecord:   outRecord,
			InRecord:    inRecord,
			FromBalance: fromBalance,
			ToBalance:   toBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Transfer completed",
		"from_account", from,
		"to_account", to,
		"amount", amount,
		"out_transaction_id", receipt.OutRecord.TransactionID.String(),
		"in_transaction_id", receipt.InRecord.TransactionID.String(),
	)
	return receipt, nil
}

// ChangePassword replaces the account's credential. The caller identity must
// be bound to the same account.
func (e *Engine) ChangePassword(ctx context.Context, callerAccount, number, newHash string) error {
	if err := e.requireSelf(ctx, callerAccount, number); err != nil {
		return err
	}
	return e.accounts.SetPasswordHash(ctx, number, newHash)
}

// UpdateProfile replaces the account's non-financial attributes. The balance
// and the credential are untouched by construction.
func (e *Engine) UpdateProfile(ctx context.Context, callerAccount, number string, profile account.Profile) error {
	if err := e.requireSelf(ctx, callerAccount, number); err != nil {
		return err
	}
	if err := account.ValidateProfile(profile); err != nil {
		return err
	}
	return e.accounts.UpdateProfile(ctx, number, profile)
}

// Deactivate marks the account inactive. All subsequent mutating operations
// against it are rejected.
func (e *Engine) Deactivate(ctx context.Context, callerAccount, number string) error {
	if err := e.requireSelf(ctx, callerAccount, number); err != nil {
		return err
	}

	err := e.accounts.SetActive(ctx, number, false)
	if err != nil {
		return err
	}

	e.logger.Info("Account deactivated", "account_number", number)
	return nil
}

// requireSelf rejects operations where the session identity is bound to a
// different account than the one being changed, and ensures the target is
// still active.
func (e *Engine) requireSelf(ctx context.Context, callerAccount, number string) error {
	if callerAccount != number {
		return shared.ErrInvalidCredentials
	}

	acc, err := e.accounts.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	if !acc.IsActive {
		return fmt.Errorf("%w: %s", shared.ErrAccountInactive, number)
	}
	return nil
}

// appendWithOutbox writes the log record and its outbox message inside tx.
func (e *Engine) appendWithOutbox(ctx context.Context, tx pgx.Tx, number string, typ transaction.Type, amount int64, details string) (*transaction.Record, error) {
	record, err := transaction.NewRecord(number, typ, amount, details)
	if err != nil {
		return nil, err
	}
	if err := e.records.WithTx(tx).Append(ctx, record); err != nil {
		return nil, err
	}

	message, err := outbox.NewMessage(record)
	if err != nil {
		return nil, err
	}
	if err := e.outbox.WithTx(tx).Create(ctx, message); err != nil {
		return nil, err
	}

	return record, nil
}

// runAtomic executes fn inside a database transaction with a per-transaction
// lock timeout. Transient failures roll back and re-execute fn from scratch,
// up to the configured attempt bound; business errors surface immediately.
func (e *Engine) runAtomic(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := e.cfg.RetryBackoff * time.Duration(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := e.attemptAtomic(ctx, fn)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		e.logger.Warn("Transient storage error, retrying operation",
			"attempt", attempt+1,
			"max_retries", e.cfg.MaxRetries,
			"error", err,
		)
		lastErr = err
	}

	e.logger.Error("Operation failed after retry exhaustion", "error", lastErr)
	return classifyExhausted(lastErr)
}

func (e *Engine) attemptAtomic(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorageUnavailable, err)
	}

	// lock_timeout bounds how long any row lock acquisition in this
	// transaction may block. SET LOCAL does not accept bind parameters.
	lockTimeout := fmt.Sprintf("SET LOCAL lock_timeout = %d", e.cfg.LockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, lockTimeout); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return nil
}
