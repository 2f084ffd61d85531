package httptransport

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/pin-vault/internal/transport/http/handler"
	"github.com/ErlanBelekov/pin-vault/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type tokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type adminChecker interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

func NewRouter(logger *slog.Logger, verifier tokenVerifier, admins adminChecker, authHandler *handler.AuthHandler, bookmarkHandler *handler.BookmarkHandler, adminHandler *handler.AdminHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	// Public routes
	r.GET("/status", handler.Status)
	r.POST("/auth", authHandler.Authenticate)
	r.POST("/check-username", authHandler.CheckUsername)
	r.POST("/verify", authHandler.Verify)

	authMW := middleware.Auth(verifier, logger)

	// Protected bookmark routes
	urls := r.Group("/urls", authMW)
	urls.GET("", bookmarkHandler.List)
	urls.POST("", bookmarkHandler.Create)
	urls.PUT("", bookmarkHandler.Rename)
	urls.DELETE("/:id", bookmarkHandler.Delete)

	// Admin routes; the usecases re-check the flag in their transaction
	users := r.Group("/admin/users", authMW, middleware.Admin(admins, logger))
	users.GET("", adminHandler.List)
	users.POST("", adminHandler.Create)
	users.PUT("", adminHandler.Update)
	users.DELETE("", adminHandler.Delete)

	return r
}
