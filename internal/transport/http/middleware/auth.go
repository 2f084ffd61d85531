package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/reqctx"
	"github.com/gin-gonic/gin"
)

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "username"

const (
	errTokenInvalid   = "Invalid or expired token"
	errInternalServer = "Internal server error"
)

type tokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Auth resolves the Authorization header to a username. The header may
// carry the raw token or "Bearer <token>".
func Auth(verifier tokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errTokenInvalid})
			return
		}

		username, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errTokenInvalid})
				return
			}
			logger.ErrorContext(c.Request.Context(), "verify token", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
			return
		}

		c.Set(UsernameKey, username)
		c.Request = c.Request.WithContext(reqctx.WithActor(c.Request.Context(), username))
		c.Next()
	}
}

// BearerToken strips an optional "Bearer " scheme from an Authorization
// header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
