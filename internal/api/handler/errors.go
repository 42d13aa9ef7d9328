package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/internal/domain/account"
	"github.com/corebank/ledger/internal/domain/shared"
)

// respondLedgerError maps the engine's error taxonomy onto HTTP statuses.
// Anything unrecognized is treated as an internal error and logged.
func respondLedgerError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidAmount),
		errors.Is(err, shared.ErrInvalidProfile),
		errors.Is(err, shared.ErrInvalidOperation):
		RespondBadRequest(c, err.Error())

	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")

	case errors.Is(err, shared.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient funds for this operation")

	case errors.Is(err, shared.ErrAccountInactive):
		RespondUnprocessable(c, "ACCOUNT_INACTIVE", "Account is deactivated")

	case errors.Is(err, shared.ErrInvalidCredentials):
		RespondUnauthorized(c, "Invalid credentials")

	case errors.Is(err, shared.ErrBusy):
		RespondConflict(c, "Account is busy, retry later")

	case errors.Is(err, shared.ErrStorageUnavailable):
		RespondServiceUnavailable(c, "Service temporarily unavailable, retry later")

	default:
		logger.Error("Unhandled ledger error", "error", err)
		RespondInternalError(c)
	}
}
