package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/internal/api/middleware"
)

// LedgerHandler handles the financial operations: credit, debit, transfer,
// and the transaction history.
type LedgerHandler struct {
	ledger LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledgerService,
		logger: logger,
	}
}

// Credit deposits an amount into the caller's account
func (h *LedgerHandler) Credit(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.ledger.Credit(c.Request.Context(), number, req.Amount)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapReceiptToResponse(receipt))
}

// Debit withdraws an amount from the caller's account
func (h *LedgerHandler) Debit(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.ledger.Debit(c.Request.Context(), number, req.Amount)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapReceiptToResponse(receipt))
}

// Transfer moves an amount from the caller's account to another account
func (h *LedgerHandler) Transfer(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.ledger.Transfer(c.Request.Context(), number, req.ToAccount, req.Amount)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransferReceiptToResponse(receipt))
}

// History returns a page of the caller's transaction log, oldest first
func (h *LedgerHandler) History(c *gin.Context) {
	number, ok := h.authorizedAccount(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	records, total, err := h.ledger.GetHistory(c.Request.Context(), number, params.Page, params.PerPage)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	responses := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage, int(total))
}

func (h *LedgerHandler) authorizedAccount(c *gin.Context) (string, bool) {
	number := c.Param("number")
	if middleware.GetAccountNumber(c) != number {
		RespondForbidden(c, "Session is not bound to this account")
		return "", false
	}
	return number, true
}
