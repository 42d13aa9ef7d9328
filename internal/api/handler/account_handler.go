package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/internal/api/middleware"
)

// AccountHandler handles account lifecycle and profile operations.
type AccountHandler struct {
	ledger   LedgerService
	auth     Authenticator
	sessions SessionStore
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, ledgerService LedgerService, authenticator Authenticator, sessions SessionStore) *AccountHandler {
	return &AccountHandler{
		ledger:   ledgerService,
		auth:     authenticator,
		sessions: sessions,
		logger:   logger,
	}
}

// Open handles creation of a new account. This is the only unauthenticated
// account operation; the password is hashed before the engine ever sees it.
func (h *AccountHandler) Open(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	profile, err := profileFromRequest(req.Name, req.DOB, req.City, req.ContactNumber, req.Email, req.Address)
	if err != nil {
		RespondBadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	acc, err := h.ledger.OpenAccount(c.Request.Context(), profile, hash, req.OpeningBalance)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	view := acc.View()
	RespondCreated(c, mapViewToResponse(&view))
}

// Get retrieves the authenticated caller's account
func (h *AccountHandler) Get(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	view, err := h.ledger.GetAccount(c.Request.Context(), number)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondOK(c, mapViewToResponse(view))
}

// GetBalance retrieves the authenticated caller's balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), number)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondOK(c, BalanceResponse{AccountNumber: number, Balance: balance})
}

// UpdateProfile replaces the caller's profile fields
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	profile, err := profileFromRequest(req.Name, req.DOB, req.City, req.ContactNumber, req.Email, req.Address)
	if err != nil {
		RespondBadRequest(c, "Invalid date of birth, expected YYYY-MM-DD")
		return
	}

	caller := middleware.GetAccountNumber(c)
	if err := h.ledger.UpdateProfile(c.Request.Context(), caller, number, profile); err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	view, err := h.ledger.GetAccount(c.Request.Context(), number)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondOK(c, mapViewToResponse(view))
}

// ChangePassword verifies the current password and replaces the credential.
// Every session for the account is revoked afterwards.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if _, err := h.auth.Authenticate(c.Request.Context(), number, req.CurrentPassword); err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	hash, err := h.auth.HashPassword(req.NewPassword)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	caller := middleware.GetAccountNumber(c)
	if err := h.ledger.ChangePassword(c.Request.Context(), caller, number, hash); err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	h.sessions.RevokeAccount(number)
	RespondNoContent(c)
}

// Deactivate marks the caller's account inactive and revokes its sessions
func (h *AccountHandler) Deactivate(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	caller := middleware.GetAccountNumber(c)
	if err := h.ledger.Deactivate(c.Request.Context(), caller, number); err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	h.sessions.RevokeAccount(number)
	RespondNoContent(c)
}

// authorizedAccount resolves the :number path parameter and rejects requests
// whose session is bound to a different account.
func (h *AccountHandler) authorizedAccount(c *gin.Context) (string, bool) {
	number := c.Param("number")
	if middleware.GetAccountNumber(c) != number {
		RespondForbidden(c, "Session is not bound to this account")
		return "", false
	}
	return number, true
}
