package usecase

import (
	"context"
	"errors"
	"maps"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/store"
)

// BookmarkUsecase scopes every operation to the authenticated user's own
// bookmarks. The username always comes from a validated token.
type BookmarkUsecase struct {
	store *store.Store
}

func NewBookmarkUsecase(s *store.Store) *BookmarkUsecase {
	return &BookmarkUsecase{store: s}
}

func (u *BookmarkUsecase) List(_ context.Context, username string) (map[string]domain.Bookmark, error) {
	var out map[string]domain.Bookmark
	err := u.store.View(func(tx *store.Tx) error {
		user, err := tx.User(username)
		if err != nil {
			return err
		}
		out = maps.Clone(user.URLs)
		return nil
	})
	if err != nil {
		return nil, ownerGone(err)
	}
	return out, nil
}

func (u *BookmarkUsecase) Create(ctx context.Context, username, url, nickname string) (string, error) {
	var id string
	err := u.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.AddBookmark(username, url, nickname)
		return err
	})
	if err != nil {
		return "", ownerGone(err)
	}
	return id, nil
}

func (u *BookmarkUsecase) Rename(ctx context.Context, username, id, nickname string) error {
	err := u.store.Update(ctx, func(tx *store.Tx) error {
		return tx.RenameBookmark(username, id, nickname)
	})
	return ownerGone(err)
}

func (u *BookmarkUsecase) Delete(ctx context.Context, username, id string) error {
	err := u.store.Update(ctx, func(tx *store.Tx) error {
		return tx.DeleteBookmark(username, id)
	})
	return ownerGone(err)
}

// ownerGone maps a missing owner to an invalid token: the user was deleted
// between token validation and this call.
func ownerGone(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrTokenInvalid
	}
	return err
}
