package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type bookmarkUsecaser interface {
	List(ctx context.Context, username string) (map[string]domain.Bookmark, error)
	Create(ctx context.Context, username, url, nickname string) (string, error)
	Rename(ctx context.Context, username, id, nickname string) error
	Delete(ctx context.Context, username, id string) error
}

// BookmarkHandler serves /urls. Every route runs behind middleware.Auth.
type BookmarkHandler struct {
	bookmarkUsecase bookmarkUsecaser
	logger          *slog.Logger
}

func NewBookmarkHandler(bookmarkUsecase bookmarkUsecaser, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarkUsecase: bookmarkUsecase, logger: logger.With("component", "bookmark_handler")}
}

type bookmarkResponse struct {
	URL      string `json:"url"`
	Nickname string `json:"nickname"`
}

type listBookmarksResponse struct {
	URLs map[string]bookmarkResponse `json:"urls"`
}

type createBookmarkRequest struct {
	URL      string `json:"url"`
	Nickname string `json:"nickname"`
}

type renameBookmarkRequest struct {
	URLID    string `json:"url_id"`
	Nickname string `json:"nickname"`
}

func (h *BookmarkHandler) List(c *gin.Context) {
	username := c.GetString(middleware.UsernameKey)

	urls, err := h.bookmarkUsecase.List(c.Request.Context(), username)
	if err != nil {
		h.handleError(c, "list bookmarks", err)
		return
	}

	resp := listBookmarksResponse{URLs: make(map[string]bookmarkResponse, len(urls))}
	for id, b := range urls {
		resp.URLs[id] = bookmarkResponse{URL: b.URL, Nickname: b.Nickname}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookmarkHandler) Create(c *gin.Context) {
	var req createBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errMissingField)
		return
	}

	id, err := h.bookmarkUsecase.Create(c.Request.Context(), c.GetString(middleware.UsernameKey), req.URL, req.Nickname)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			fail(c, http.StatusBadRequest, errMissingField)
			return
		}
		h.handleError(c, "create bookmark", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url_id": id})
}

func (h *BookmarkHandler) Rename(c *gin.Context) {
	var req renameBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URLID == "" {
		fail(c, http.StatusBadRequest, errInvalidRename)
		return
	}

	err := h.bookmarkUsecase.Rename(c.Request.Context(), c.GetString(middleware.UsernameKey), req.URLID, req.Nickname)
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) || errors.Is(err, domain.ErrBookmarkNotFound) {
			fail(c, http.StatusBadRequest, errInvalidRename)
			return
		}
		h.handleError(c, "rename bookmark", err)
		return
	}

	ok(c)
}

// DELETE /urls/:id
func (h *BookmarkHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	err := h.bookmarkUsecase.Delete(c.Request.Context(), c.GetString(middleware.UsernameKey), id)
	if err != nil {
		if errors.Is(err, domain.ErrBookmarkNotFound) {
			fail(c, http.StatusBadRequest, errInvalidBookmarkID)
			return
		}
		h.handleError(c, "delete bookmark", err)
		return
	}

	ok(c)
}

func (h *BookmarkHandler) handleError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrTokenInvalid) {
		fail(c, http.StatusUnauthorized, errTokenInvalid)
		return
	}
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	fail(c, http.StatusInternalServerError, errInternalServer)
}
