package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*usecase.AuthResult, error)
	CheckUsername(ctx context.Context, username string) (usecase.UsernameStatus, error)
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type authRequest struct {
	Username     string `json:"username"`
	Pin          string `json:"pin"`
	IsSettingPin bool   `json:"is_setting_pin"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	IsAdmin bool   `json:"is_admin"`
	Message string `json:"message,omitempty"`
}

// POST /auth
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if req.Username == "" {
		fail(c, http.StatusBadRequest, errUsernameRequired)
		return
	}

	res, err := h.authUsecase.Authenticate(c.Request.Context(), usecase.AuthenticateInput{
		Username:     req.Username,
		Pin:          req.Pin,
		IsSettingPin: req.IsSettingPin,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUsername):
			fail(c, http.StatusUnauthorized, errInvalidUsername)
		case errors.Is(err, domain.ErrPinRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": errPinRequired, "needs_pin": true})
		case errors.Is(err, domain.ErrInvalidPin):
			fail(c, http.StatusBadRequest, errInvalidPin)
		case errors.Is(err, domain.ErrIncorrectPin):
			fail(c, http.StatusUnauthorized, errIncorrectPin)
		default:
			h.logger.ErrorContext(c.Request.Context(), "authenticate", "error", err)
			fail(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	resp := authResponse{Success: true, Token: res.Token, IsAdmin: res.IsAdmin}
	if res.PinSet {
		resp.Message = msgPinSet
	}
	c.JSON(http.StatusOK, resp)
}

type checkUsernameRequest struct {
	Username string `json:"username"`
}

// POST /check-username
// An unknown username is not an error: it answers 200 with exists=false.
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	var req checkUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}
	if req.Username == "" {
		fail(c, http.StatusBadRequest, errUsernameRequired)
		return
	}

	status, err := h.authUsecase.CheckUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "check username", "error", err)
		fail(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	if !status.Exists {
		c.JSON(http.StatusOK, gin.H{"exists": false, "message": errInvalidUsername})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "needs_pin": status.NeedsPin})
}

type verifyRequest struct {
	Token string `json:"token"`
}

// POST /verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "message": errNoToken})
		return
	}

	if _, err := h.authUsecase.VerifyToken(c.Request.Context(), req.Token); err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			h.logger.ErrorContext(c.Request.Context(), "verify token", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// GET /status
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}
