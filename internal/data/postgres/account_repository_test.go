package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testAccount(number string) *account.Account {
	now := time.Now().UTC()
	return &account.Account{
		AccountNumber: number,
		Profile: account.Profile{
			Name:          "Test User",
			DOB:           time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
			City:          "Berlin",
			ContactNumber: "+4915112345678",
			Email:         "test.user@example.com",
			Address:       "1 Test Street",
		},
		PasswordHash: "$2a$10$hash",
		Balance:      2500,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

const selectAccountPattern = `
		SELECT account_number, name, dob, city, contact_number, email, address, password_hash, balance, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = \$1
	`

func accountRows(acc *account.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"account_number", "name", "dob", "city", "contact_number", "email", "address", "password_hash", "balance", "is_active", "created_at", "updated_at"}).
		AddRow(acc.AccountNumber, acc.Profile.Name, acc.Profile.DOB, acc.Profile.City, acc.Profile.ContactNumber, acc.Profile.Email, acc.Profile.Address, acc.PasswordHash, acc.Balance, acc.IsActive, acc.CreatedAt, acc.UpdatedAt)
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount("1234567890")

	query := `
		INSERT INTO accounts \(account_number, name, dob, city, contact_number, email, address, password_hash, balance, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10, \$11, \$12\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.AccountNumber, acc.Profile.Name, acc.Profile.DOB, acc.Profile.City, acc.Profile.ContactNumber, acc.Profile.Email, acc.Profile.Address, acc.PasswordHash, acc.Balance, acc.IsActive, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate account number", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.AccountNumber, acc.Profile.Name, acc.Profile.DOB, acc.Profile.City, acc.Profile.ContactNumber, acc.Profile.Email, acc.Profile.Address, acc.PasswordHash, acc.Balance, acc.IsActive, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		var dupErr account.ErrDuplicateAccountNumber
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, acc.AccountNumber, dupErr.AccountNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.AccountNumber, acc.Profile.Name, acc.Profile.DOB, acc.Profile.City, acc.Profile.ContactNumber, acc.Profile.Email, acc.Profile.Address, acc.PasswordHash, acc.Balance, acc.IsActive, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByNumber(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expected := testAccount("1234567890")

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(selectAccountPattern).WithArgs(expected.AccountNumber).WillReturnRows(accountRows(expected))

		acc, err := repo.GetByNumber(ctx, expected.AccountNumber)
		assert.NoError(t, err)
		assert.Equal(t, expected, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(selectAccountPattern).WithArgs(expected.AccountNumber).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByNumber(ctx, expected.AccountNumber)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, expected.AccountNumber, notFoundErr.AccountNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(selectAccountPattern).WithArgs(expected.AccountNumber).WillReturnError(dbErr)

		acc, err := repo.GetByNumber(ctx, expected.AccountNumber)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expected := testAccount("1234567890")

	query := `
		SELECT account_number, name, dob, city, contact_number, email, address, password_hash, balance, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.AccountNumber).WillReturnRows(accountRows(expected))

		acc, err := repo.LockForUpdate(ctx, expected.AccountNumber)
		assert.NoError(t, err)
		assert.Equal(t, expected, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.AccountNumber).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.LockForUpdate(ctx, expected.AccountNumber)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock db error")
		mock.ExpectQuery(query).WithArgs(expected.AccountNumber).WillReturnError(dbErr)

		acc, err := repo.LockForUpdate(ctx, expected.AccountNumber)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to lock account for update")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	number := "1234567890"

	query := `
		UPDATE accounts
		SET balance = balance \+ \$1, updated_at = NOW\(\)
		WHERE account_number = \$2 AND balance \+ \$1 >= 0
		RETURNING balance
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(500), number).
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(3000)))

		newBalance, err := repo.AdjustBalance(ctx, number, 500)
		assert.NoError(t, err)
		assert.Equal(t, int64(3000), newBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient funds", func(t *testing.T) {
		// No row updated but the account exists: the post-condition failed.
		mock.ExpectQuery(query).
			WithArgs(int64(-5000), number).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(selectAccountPattern).
			WithArgs(number).
			WillReturnRows(accountRows(testAccount(number)))

		newBalance, err := repo.AdjustBalance(ctx, number, -5000)
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
		assert.Zero(t, newBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("account missing", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(100), number).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(selectAccountPattern).
			WithArgs(number).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.AdjustBalance(ctx, number, 100)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("adjust db error")
		mock.ExpectQuery(query).
			WithArgs(int64(100), number).
			WillReturnError(dbErr)

		_, err := repo.AdjustBalance(ctx, number, 100)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to adjust account balance")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	number := "1234567890"
	profile := testAccount(number).Profile

	query := `
		UPDATE accounts
		SET name = \$1, dob = \$2, city = \$3, contact_number = \$4, email = \$5, address = \$6, updated_at = NOW\(\)
		WHERE account_number = \$7
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(profile.Name, profile.DOB, profile.City, profile.ContactNumber, profile.Email, profile.Address, number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateProfile(ctx, number, profile)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(profile.Name, profile.DOB, profile.City, profile.ContactNumber, profile.Email, profile.Address, number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateProfile(ctx, number, profile)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_SetPasswordHash(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	number := "1234567890"

	query := `
		UPDATE accounts
		SET password_hash = \$1, updated_at = NOW\(\)
		WHERE account_number = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("$2a$10$newhash", number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SetPasswordHash(ctx, number, "$2a$10$newhash")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("$2a$10$newhash", number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetPasswordHash(ctx, number, "$2a$10$newhash")
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_SetActive(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	number := "1234567890"

	query := `
		UPDATE accounts
		SET is_active = \$1, updated_at = NOW\(\)
		WHERE account_number = \$2
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(false, number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.SetActive(ctx, number, false)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(false, number).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetActive(ctx, number, false)
		var notFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_WithTx(t *testing.T) {
	logger := newTestLogger()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &AccountRepository{querier: mockPool, logger: logger}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.NotNil(t, txRepo)
	assert.Equal(t, originalRepo.logger, txRepo.(*AccountRepository).logger)
	assert.Equal(t, pgxTx, txRepo.(*AccountRepository).querier, "Querier in new repo should be the transaction")

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
