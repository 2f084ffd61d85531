package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/store"
)

// PinNotSet is reported in place of the PIN for users that have none yet.
const PinNotSet = "Not Set"

// AdminUsecase manages the user lifecycle. Every method first checks, in
// the same transaction, that actor still exists and is an admin.
type AdminUsecase struct {
	store *store.Store
}

func NewAdminUsecase(s *store.Store) *AdminUsecase {
	return &AdminUsecase{store: s}
}

type UserSummary struct {
	Username string
	Created  *time.Time
	IsAdmin  bool
	HasPin   bool
	Pin      string // raw PIN, or PinNotSet
}

type UpdateUserInput struct {
	Username string
	Pin      *string
	IsAdmin  *bool
}

// IsAdmin reports whether username exists and carries the admin flag. A
// missing user is reported as an invalid token.
func (u *AdminUsecase) IsAdmin(_ context.Context, username string) (bool, error) {
	err := u.store.View(func(tx *store.Tx) error {
		return authorize(tx, username)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}

func (u *AdminUsecase) ListUsers(_ context.Context, actor string) ([]UserSummary, error) {
	var out []UserSummary
	err := u.store.View(func(tx *store.Tx) error {
		if err := authorize(tx, actor); err != nil {
			return err
		}
		for _, user := range tx.Users() {
			s := UserSummary{
				Username: user.Username,
				Created:  user.Created,
				IsAdmin:  user.IsAdmin,
				HasPin:   user.HasPin(),
				Pin:      PinNotSet,
			}
			if user.HasPin() {
				s.Pin = *user.Pin
			}
			out = append(out, s)
		}
		return nil
	})
	return out, err
}

func (u *AdminUsecase) CreateUser(ctx context.Context, actor, username string, isAdmin bool) error {
	return u.store.Update(ctx, func(tx *store.Tx) error {
		if err := authorize(tx, actor); err != nil {
			return err
		}
		_, err := tx.CreateUser(username, isAdmin)
		return err
	})
}

// UpdateUser changes the PIN and/or admin flag. Either field may be nil.
// Nothing is written unless every supplied field is valid.
func (u *AdminUsecase) UpdateUser(ctx context.Context, actor string, input UpdateUserInput) error {
	return u.store.Update(ctx, func(tx *store.Tx) error {
		if err := authorize(tx, actor); err != nil {
			return err
		}
		if _, err := tx.User(input.Username); err != nil {
			return err
		}
		if input.Pin != nil {
			if err := tx.SetPin(input.Username, *input.Pin); err != nil {
				return err
			}
		}
		if input.IsAdmin != nil {
			if err := tx.SetAdmin(input.Username, *input.IsAdmin); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteUser removes a user and revokes all of its tokens. An admin can
// never delete the username it is authenticated as.
func (u *AdminUsecase) DeleteUser(ctx context.Context, actor, username string) error {
	return u.store.Update(ctx, func(tx *store.Tx) error {
		if err := authorize(tx, actor); err != nil {
			return err
		}
		if !domain.ValidUsername(username) {
			return domain.ErrInvalidUsername
		}
		if _, err := tx.User(username); err != nil {
			return err
		}
		if username == actor {
			return domain.ErrSelfDelete
		}
		return tx.DeleteUser(username)
	})
}

func authorize(tx *store.Tx, actor string) error {
	user, err := tx.User(actor)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrTokenInvalid
		}
		return err
	}
	if !user.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
