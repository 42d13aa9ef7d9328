package handler

import (
	"time"

	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/transaction"
	"github.com/corebank/ledger/internal/ledger"
)

const dateLayout = "2006-01-02"

// OpenAccountRequest represents a request to open a new account
type OpenAccountRequest struct {
	Name           string `json:"name" binding:"required"`
	DOB            string `json:"dob" binding:"required"`
	City           string `json:"city" binding:"required"`
	ContactNumber  string `json:"contact_number" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Address        string `json:"address" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	OpeningBalance int64  `json:"opening_balance" binding:"min=0"`
}

// LoginRequest represents a request to start a session
type LoginRequest struct {
	AccountNumber string `json:"account_number" binding:"required,len=10"`
	Password      string `json:"password" binding:"required"`
}

// AmountRequest represents a credit or debit request
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferRequest represents a transfer to another account
type TransferRequest struct {
	ToAccount string `json:"to_account" binding:"required,len=10"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// ChangePasswordRequest represents a password change for the session's account
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateProfileRequest carries the replaceable profile fields
type UpdateProfileRequest struct {
	Name          string `json:"name" binding:"required"`
	DOB           string `json:"dob" binding:"required"`
	City          string `json:"city" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Email         string `json:"email" binding:"required"`
	Address       string `json:"address" binding:"required"`
}

// AccountResponse represents an account in API responses. It is built from the
// credential-free view, never from the stored account row.
type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	DOB           string `json:"dob"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Balance       int64  `json:"balance"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// SessionResponse represents an issued session
type SessionResponse struct {
	Token         string `json:"token"`
	AccountNumber string `json:"account_number"`
	ExpiresAt     string `json:"expires_at"`
}

// BalanceResponse represents an account balance lookup
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       int64  `json:"balance"`
}

// RecordResponse represents one transaction log entry in API responses
type RecordResponse struct {
	ID            int64  `json:"id"`
	TransactionID string `json:"transaction_id"`
	AccountNumber string `json:"account_number"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Details       string `json:"details"`
	RecordedAt    string `json:"recorded_at"`
}

// ReceiptResponse represents a completed credit or debit
type ReceiptResponse struct {
	Record     RecordResponse `json:"record"`
	NewBalance int64          `json:"new_balance"`
}

// TransferReceiptResponse represents a completed transfer
type TransferReceiptResponse struct {
	OutRecord   RecordResponse `json:"out_record"`
	InRecord    RecordResponse `json:"in_record"`
	FromBalance int64          `json:"from_balance"`
	ToBalance   int64          `json:"to_balance"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func profileFromRequest(name, dob, city, contactNumber, email, address string) (account.Profile, error) {
	parsedDOB, err := time.Parse(dateLayout, dob)
	if err != nil {
		return account.Profile{}, err
	}
	return account.Profile{
		Name:          name,
		DOB:           parsedDOB,
		City:          city,
		ContactNumber: contactNumber,
		Email:         email,
		Address:       address,
	}, nil
}

func mapViewToResponse(view *account.View) AccountResponse {
	return AccountResponse{
		AccountNumber: view.AccountNumber,
		Name:          view.Profile.Name,
		DOB:           view.Profile.DOB.Format(dateLayout),
		City:          view.Profile.City,
		ContactNumber: view.Profile.ContactNumber,
		Email:         view.Profile.Email,
		Address:       view.Profile.Address,
		Balance:       view.Balance,
		IsActive:      view.IsActive,
		CreatedAt:     view.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     view.UpdatedAt.Format(time.RFC3339),
	}
}

func mapRecordToResponse(record *transaction.Record) RecordResponse {
	return RecordResponse{
		ID:            record.ID,
		TransactionID: record.TransactionID.String(),
		AccountNumber: record.AccountNumber,
		Type:          string(record.Type),
		Amount:        record.Amount,
		Details:       record.Details,
		RecordedAt:    record.RecordedAt.Format(time.RFC3339),
	}
}

func mapReceiptToResponse(receipt *ledger.Receipt) ReceiptResponse {
	return ReceiptResponse{
		Record:     mapRecordToResponse(receipt.Record),
		NewBalance: receipt.NewBalance,
	}
}

func mapTransferReceiptToResponse(receipt *ledger.TransferReceipt) TransferReceiptResponse {
	return TransferReceiptResponse{
		OutRecord:   mapRecordToResponse(receipt.OutRecord),
		InRecord:    mapRecordToResponse(receipt.InRecord),
		FromBalance: receipt.FromBalance,
		ToBalance:   receipt.ToBalance,
	}
}
