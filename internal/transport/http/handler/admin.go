package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/transport/http/middleware"
	"github.com/ErlanBelekov/pin-vault/internal/usecase"
	"github.com/gin-gonic/gin"
)

type adminUsecaser interface {
	ListUsers(ctx context.Context, actor string) ([]usecase.UserSummary, error)
	CreateUser(ctx context.Context, actor, username string, isAdmin bool) error
	UpdateUser(ctx context.Context, actor string, input usecase.UpdateUserInput) error
	DeleteUser(ctx context.Context, actor, username string) error
}

// AdminHandler serves /admin/users. The usecase re-checks the admin flag
// inside the same transaction as the change.
type AdminHandler struct {
	adminUsecase adminUsecaser
	logger       *slog.Logger
}

func NewAdminHandler(adminUsecase adminUsecaser, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase, logger: logger.With("component", "admin_handler")}
}

type userResponse struct {
	Created *float64 `json:"created"` // unix seconds
	IsAdmin bool     `json:"is_admin"`
	HasPin  bool     `json:"has_pin"`
	Pin     string   `json:"pin"`
}

type listUsersResponse struct {
	Users map[string]userResponse `json:"users"`
}

type createUserRequest struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type updateUserRequest struct {
	Username string  `json:"username"`
	Pin      *string `json:"pin"`
	IsAdmin  *bool   `json:"is_admin"`
}

type deleteUserRequest struct {
	Username string `json:"username"`
}

func (h *AdminHandler) List(c *gin.Context) {
	users, err := h.adminUsecase.ListUsers(c.Request.Context(), c.GetString(middleware.UsernameKey))
	if err != nil {
		h.handleError(c, "list users", err)
		return
	}

	resp := listUsersResponse{Users: make(map[string]userResponse, len(users))}
	for _, u := range users {
		r := userResponse{IsAdmin: u.IsAdmin, HasPin: u.HasPin, Pin: u.Pin}
		if u.Created != nil {
			secs := float64(u.Created.UnixMicro()) / 1e6
			r.Created = &secs
		}
		resp.Users[u.Username] = r
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errCreateUser)
		return
	}

	err := h.adminUsecase.CreateUser(c.Request.Context(), c.GetString(middleware.UsernameKey), req.Username, req.IsAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidUsername) || errors.Is(err, domain.ErrUserExists) {
			fail(c, http.StatusBadRequest, errCreateUser)
			return
		}
		h.handleError(c, "create user", err)
		return
	}

	ok(c)
}

func (h *AdminHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errBadRequest)
		return
	}

	err := h.adminUsecase.UpdateUser(c.Request.Context(), c.GetString(middleware.UsernameKey), usecase.UpdateUserInput{
		Username: req.Username,
		Pin:      req.Pin,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			fail(c, http.StatusNotFound, errUserNotFound)
		case errors.Is(err, domain.ErrInvalidPin):
			fail(c, http.StatusBadRequest, errInvalidPin)
		default:
			h.handleError(c, "update user", err)
		}
		return
	}

	ok(c)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidUsername)
		return
	}

	err := h.adminUsecase.DeleteUser(c.Request.Context(), c.GetString(middleware.UsernameKey), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrUserNotFound):
			fail(c, http.StatusBadRequest, errInvalidUsername)
		case errors.Is(err, domain.ErrSelfDelete):
			fail(c, http.StatusBadRequest, errSelfDelete)
		default:
			h.handleError(c, "delete user", err)
		}
		return
	}

	ok(c)
}

func (h *AdminHandler) handleError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenInvalid):
		fail(c, http.StatusUnauthorized, errTokenInvalid)
	case errors.Is(err, domain.ErrForbidden):
		fail(c, http.StatusForbidden, errForbidden)
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		fail(c, http.StatusInternalServerError, errInternalServer)
	}
}
