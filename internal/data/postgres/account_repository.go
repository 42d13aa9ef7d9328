// Package postgres provides PostgreSQL implementations of the domain
// repositories. All balance mutations are single-statement read-modify-writes
// guarded by the row lock held by the engine's transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/shared"
	"github.com/corebank/ledger/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account. A duplicate account number surfaces as
// ErrDuplicateAccountNumber so the opener can retry number generation.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (account_number, name, dob, city, contact_number, email, address, password_hash, balance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.AccountNumber,
		acc.Profile.Name,
		acc.Profile.DOB,
		acc.Profile.City,
		acc.Profile.ContactNumber,
		acc.Profile.Email,
		acc.Profile.Address,
		acc.PasswordHash,
		acc.Balance,
		acc.IsActive,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return account.ErrDuplicateAccountNumber{AccountNumber: acc.AccountNumber}
		}
		r.logger.Error("Failed to create account", "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

const accountColumns = `account_number, name, dob, city, contact_number, email, address, password_hash, balance, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.AccountNumber,
		&acc.Profile.Name,
		&acc.Profile.DOB,
		&acc.Profile.City,
		&acc.Profile.ContactNumber,
		&acc.Profile.Email,
		&acc.Profile.Address,
		&acc.PasswordHash,
		&acc.Balance,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetByNumber retrieves an account by its account number
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountNumber: number}
		}
		r.logger.Error("Failed to get account", "account_number", number, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// LockForUpdate obtains a pessimistic lock on the account row and returns its
// current state. Must be used within a transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, number string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountNumber: number}
		}
		r.logger.Error("Failed to lock account for update", "account_number", number, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

// AdjustBalance atomically applies balance += delta subject to the
// post-condition balance >= 0, in a single statement. Zero rows affected on an
// existing account means the post-condition would be violated.
func (r *AccountRepository) AdjustBalance(ctx context.Context, number string, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE account_number = $2 AND balance + $1 >= 0
		RETURNING balance
	`

	var newBalance int64
	err := r.querier.QueryRow(ctx, query, delta, number).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing row from a violated post-condition.
			if _, getErr := r.GetByNumber(ctx, number); getErr != nil {
				return 0, getErr
			}
			return 0, shared.ErrInsufficientFunds
		}
		r.logger.Error("Failed to adjust account balance", "account_number", number, "error", err)
		return 0, fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return newBalance, nil
}

// UpdateProfile replaces the non-financial fields only; balance and
// password_hash are never touched here.
func (r *AccountRepository) UpdateProfile(ctx context.Context, number string, profile account.Profile) error {
	query := `
		UPDATE accounts
		SET name = $1, dob = $2, city = $3, contact_number = $4, email = $5, address = $6, updated_at = NOW()
		WHERE account_number = $7
	`

	result, err := r.querier.Exec(ctx, query,
		profile.Name,
		profile.DOB,
		profile.City,
		profile.ContactNumber,
		profile.Email,
		profile.Address,
		number,
	)
	if err != nil {
		r.logger.Error("Failed to update profile", "account_number", number, "error", err)
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountNumber: number}
	}

	return nil
}

// SetPasswordHash replaces the stored credential material
func (r *AccountRepository) SetPasswordHash(ctx context.Context, number string, hash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, updated_at = NOW()
		WHERE account_number = $2
	`

	result, err := r.querier.Exec(ctx, query, hash, number)
	if err != nil {
		r.logger.Error("Failed to set password hash", "account_number", number, "error", err)
		return fmt.Errorf("failed to set password hash: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountNumber: number}
	}

	return nil
}

// SetActive flips the activation flag; deactivation is the only teardown path
func (r *AccountRepository) SetActive(ctx context.Context, number string, active bool) error {
	query := `
		UPDATE accounts
		SET is_active = $1, updated_at = NOW()
		WHERE account_number = $2
	`

	result, err := r.querier.Exec(ctx, query, active, number)
	if err != nil {
		r.logger.Error("Failed to set account active flag", "account_number", number, "error", err)
		return fmt.Errorf("failed to set account active flag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountNumber: number}
	}

	return nil
}
