package handler

import (
	"context"

	"github.com/corebank/ledger/internal/auth"
	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/ledger"
)

// LedgerService is the surface of the ledger engine the handlers use.
type LedgerService interface {
	OpenAccount(ctx context.Context, profile account.Profile, passwordHash string, openingBalance int64) (*account.Account, error)
	GetAccount(ctx context.Context, number string) (*account.View, error)
	GetBalance(ctx context.Context, number string) (int64, error)
	GetHistory(ctx context.Context, number string, page, perPage int) ([]*transaction.Record, int64, error)
	Credit(ctx context.Context, number string, amount int64) (*ledger.Receipt, error)
	Debit(ctx context.Context, number string, amount int64) (*ledger.Receipt, error)
	Transfer(ctx context.Context, from, to string, amount int64) (*ledger.TransferReceipt, error)
	ChangePassword(ctx context.Context, callerAccount, number, newHash string) error
	UpdateProfile(ctx context.Context, callerAccount, number string, profile account.Profile) error
	Deactivate(ctx context.Context, callerAccount, number string) error
}

// Authenticator verifies credentials and derives stored hashes.
type Authenticator interface {
	Authenticate(ctx context.Context, number, password string) (*account.Account, error)
	HashPassword(password string) (string, error)
}

// SessionStore issues and revokes session identities.
type SessionStore interface {
	Issue(accountNumber string) auth.Session
	Validate(token string) (string, error)
	Revoke(token string)
	RevokeAccount(accountNumber string)
}
