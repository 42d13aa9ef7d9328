package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/internal/api/handler"
	"github.com/corebank/ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware. Opening an account and
// logging in are the only unauthenticated operations; everything else requires
// a session bound to the account in the path.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	sessions middleware.TokenValidator,
	accountHandler *handler.AccountHandler,
	sessionHandler *handler.SessionHandler,
	ledgerHandler *handler.LedgerHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		v1.POST("/accounts", accountHandler.Open)
		v1.POST("/sessions", sessionHandler.Login)

		authorized := v1.Group("", middleware.Auth(sessions))
		{
			authorized.DELETE("/sessions", sessionHandler.Logout)

			accounts := authorized.Group("/accounts/:number")
			{
				accounts.GET("", accountHandler.Get)
				accounts.GET("/balance", accountHandler.GetBalance)
				accounts.GET("/transactions", ledgerHandler.History)
				accounts.PUT("/profile", accountHandler.UpdateProfile)
				accounts.PUT("/password", accountHandler.ChangePassword)
				accounts.DELETE("", accountHandler.Deactivate)

				accounts.POST("/credits", ledgerHandler.Credit)
				accounts.POST("/debits", ledgerHandler.Debit)
				accounts.POST("/transfers", ledgerHandler.Transfer)
			}
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
