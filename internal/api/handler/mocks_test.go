package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/corebank/ledger/internal/auth"
	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/ledger"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) OpenAccount(ctx context.Context, profile account.Profile, passwordHash string, openingBalance int64) (*account.Account, error) {
	args := m.Called(ctx, profile, passwordHash, openingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedgerService) GetAccount(ctx context.Context, number string) (*account.View, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.View), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, number string) (int64, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) GetHistory(ctx context.Context, number string, page, perPage int) ([]*transaction.Record, int64, error) {
	args := m.Called(ctx, number, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Credit(ctx context.Context, number string, amount int64) (*ledger.Receipt, error) {
	args := m.Called(ctx, number, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, number string, amount int64) (*ledger.Receipt, error) {
	args := m.Called(ctx, number, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

func (m *MockLedgerService) Transfer(ctx context.Context, from, to string, amount int64) (*ledger.TransferReceipt, error) {
	args := m.Called(ctx, from, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferReceipt), args.Error(1)
}

func (m *MockLedgerService) ChangePassword(ctx context.Context, callerAccount, number, newHash string) error {
	args := m.Called(ctx, callerAccount, number, newHash)
	return args.Error(0)
}

func (m *MockLedgerService) UpdateProfile(ctx context.Context, callerAccount, number string, profile account.Profile) error {
	args := m.Called(ctx, callerAccount, number, profile)
	return args.Error(0)
}

func (m *MockLedgerService) Deactivate(ctx context.Context, callerAccount, number string) error {
	args := m.Called(ctx, callerAccount, number)
	return args.Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, number, password string) (*account.Account, error) {
	args := m.Called(ctx, number, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAuthenticator) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Issue(accountNumber string) auth.Session {
	args := m.Called(accountNumber)
	return args.Get(0).(auth.Session)
}

func (m *MockSessionStore) Validate(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Revoke(token string) {
	m.Called(token)
}

func (m *MockSessionStore) RevokeAccount(accountNumber string) {
	m.Called(accountNumber)
}

var _ LedgerService = (*MockLedgerService)(nil)
var _ Authenticator = (*MockAuthenticator)(nil)
var _ SessionStore = (*MockSessionStore)(nil)
