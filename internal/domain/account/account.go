package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/corebank/ledger/internal/domain/shared"
)

// Profile carries the non-financial attributes of an account. Profile updates
// never touch the balance or the credential material.
type Profile struct {
	Name          string    `json:"name"`
	DOB           time.Time `json:"dob"`
	City          string    `json:"city"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
}

// Account represents a bank account row. PasswordHash never leaves the auth
// gateway; use View for anything caller-facing.
type Account struct {
	AccountNumber string    `json:"account_number"`
	Profile       Profile   `json:"profile"`
	PasswordHash  string    `json:"-"`
	Balance       int64     `json:"balance"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// View is the projection of an account exposed outside the auth gateway.
// It has no credential field at all, so a view can never leak the hash.
type View struct {
	AccountNumber string    `json:"account_number"`
	Profile       Profile   `json:"profile"`
	Balance       int64     `json:"balance"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New builds an account ready for insertion. The account number is assigned
// separately by the engine (generation is collision-checked against the store).
func New(number string, profile Profile, passwordHash string, openingBalance int64) (*Account, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if openingBalance < 0 {
		return nil, shared.ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Account{
		AccountNumber: number,
		Profile:       profile,
		PasswordHash:  passwordHash,
		Balance:       openingBalance,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// View returns the caller-facing projection of the account.
func (a *Account) View() View {
	return View{
		AccountNumber: a.AccountNumber,
		Profile:       a.Profile,
		Balance:       a.Balance,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ValidateProfile checks the profile fields that have format requirements.
func ValidateProfile(p Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", shared.ErrInvalidProfile)
	}
	if !ValidEmail(p.Email) {
		return fmt.Errorf("%w: malformed email %q", shared.ErrInvalidProfile, p.Email)
	}
	return nil
}

// ValidEmail reports whether the address passes the format check: it must
// contain both '@' and '.'.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
