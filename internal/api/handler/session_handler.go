package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/internal/api/middleware"
)

// SessionHandler handles login and logout.
type SessionHandler struct {
	auth     Authenticator
	sessions SessionStore
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *slog.Logger, authenticator Authenticator, sessions SessionStore) *SessionHandler {
	return &SessionHandler{
		auth:     authenticator,
		sessions: sessions,
		logger:   logger,
	}
}

// Login verifies credentials and issues a session token
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.auth.Authenticate(c.Request.Context(), req.AccountNumber, req.Password)
	if err != nil {
		respondLedgerError(c, h.logger, err)
		return
	}

	session := h.sessions.Issue(acc.AccountNumber)
	RespondCreated(c, SessionResponse{
		Token:         session.Token,
		AccountNumber: session.AccountNumber,
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout revokes the caller's session token
func (h *SessionHandler) Logout(c *gin.Context) {
	token := middleware.GetSessionToken(c)
	if token != "" {
		h.sessions.Revoke(token)
	}
	RespondNoContent(c)
}
