package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/gin-gonic/gin"
)

const errForbidden = "Unauthorized"

type adminChecker interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

// Admin runs after Auth and rejects callers without the admin flag before
// any request body is read. Usecases check the flag again inside their
// transaction.
func Admin(checker adminChecker, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "admin_middleware")
	return func(c *gin.Context) {
		isAdmin, err := checker.IsAdmin(c.Request.Context(), c.GetString(UsernameKey))
		if err != nil {
			if errors.Is(err, domain.ErrTokenInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": errTokenInvalid})
				return
			}
			logger.ErrorContext(c.Request.Context(), "check admin", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": errForbidden})
			return
		}
		c.Next()
	}
}
