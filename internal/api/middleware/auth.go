package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// AuthorizationHeader carries the bearer session token.
	AuthorizationHeader = "Authorization"

	// AccountNumberKey is the context key for the authenticated account number.
	AccountNumberKey = "account_number"

	// SessionTokenKey is the context key for the raw session token.
	SessionTokenKey = "session_token"

	bearerPrefix = "Bearer "
)

// TokenValidator resolves a session token to its bound account number.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth middleware requires a valid bearer session token and binds the
// authenticated account number to the request context.
func Auth(sessions TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthorizationHeader)
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c)
			return
		}

		token := strings.TrimPrefix(header, bearerPrefix)
		accountNumber, err := sessions.Validate(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(AccountNumberKey, accountNumber)
		c.Set(SessionTokenKey, token)

		c.Next()
	}
}

// GetAccountNumber retrieves the authenticated account number from the gin
// context. Empty outside an Auth-protected route.
func GetAccountNumber(c *gin.Context) string {
	if v, exists := c.Get(AccountNumberKey); exists {
		if number, ok := v.(string); ok {
			return number
		}
	}
	return ""
}

// GetSessionToken retrieves the raw session token from the gin context.
func GetSessionToken(c *gin.Context) string {
	if v, exists := c.Get(SessionTokenKey); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "A valid session token is required",
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
