// Package auth implements the authentication gateway: password hashing and
// verification with bcrypt, and in-memory session identities. Hashes never
// leave this package; callers only ever see the opaque hash string to store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/corebank/ledger/internal/config"
	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/shared"
)

// dummyHash is compared against when the account does not exist, so a login
// attempt costs the same bcrypt work whether or not the account number is
// valid.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Gateway verifies credentials against stored bcrypt hashes.
type Gateway struct {
	accounts account.Repository
	logger   *slog.Logger
	cost     int
}

// NewGateway creates an authentication gateway over the account store.
func NewGateway(logger *slog.Logger, accounts account.Repository, cfg config.AuthConfig) *Gateway {
	return &Gateway{
		accounts: accounts,
		logger:   logger,
		cost:     cfg.BcryptCost,
	}
}

// HashPassword derives the stored credential from a plaintext password.
func (g *Gateway) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password cannot be empty", shared.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies the password for the account. A missing account, a
// wrong password, and an inactive account all surface as ErrInvalidCredentials
// so the response does not reveal which part failed.
func (g *Gateway) Authenticate(ctx context.Context, number, password string) (*account.Account, error) {
	acc, err := g.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			// Burn the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		g.logger.Warn("Failed login attempt", "account_number", number)
		return nil, shared.ErrInvalidCredentials
	}

	if !acc.IsActive {
		return nil, shared.ErrInvalidCredentials
	}

	return acc, nil
}
