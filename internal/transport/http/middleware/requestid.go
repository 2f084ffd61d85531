package middleware

import (
	"github.com/ErlanBelekov/pin-vault/internal/reqctx"
	"github.com/gin-gonic/gin"
)

// RequestID injects a request ID into the context and response header.
// An incoming X-Request-ID is kept only if it is a UUID; otherwise a new
// one is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if !reqctx.ValidRequestID(id) {
			id = reqctx.NewRequestID()
		}

		// The access logger reads the request header.
		c.Request.Header.Set("X-Request-ID", id)
		ctx := reqctx.WithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
