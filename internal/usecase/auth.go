package usecase

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/metrics"
	"github.com/ErlanBelekov/pin-vault/internal/store"
)

type AuthUsecase struct {
	store *store.Store
}

func NewAuthUsecase(s *store.Store) *AuthUsecase {
	return &AuthUsecase{store: s}
}

type AuthenticateInput struct {
	Username     string
	Pin          string
	IsSettingPin bool
}

type AuthResult struct {
	Token   string
	IsAdmin bool
	// PinSet is true when this call established the user's first PIN.
	PinSet bool
}

// Authenticate runs the PIN state machine for one user and issues a fresh
// token on success. Setting the first PIN and issuing the token commit
// together; a user whose PIN is already set always takes the verify branch,
// whatever IsSettingPin says.
func (u *AuthUsecase) Authenticate(ctx context.Context, input AuthenticateInput) (*AuthResult, error) {
	var res AuthResult
	err := u.store.Update(ctx, func(tx *store.Tx) error {
		user, err := tx.User(input.Username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrInvalidUsername
			}
			return err
		}

		switch user.PinState() {
		case domain.PinUnset:
			if !input.IsSettingPin {
				return domain.ErrPinRequired
			}
			if err := tx.SetPin(user.Username, input.Pin); err != nil {
				return err
			}
			res.PinSet = true
		case domain.PinSet:
			if subtle.ConstantTimeCompare([]byte(*user.Pin), []byte(input.Pin)) != 1 {
				return domain.ErrIncorrectPin
			}
		}

		tok, err := tx.IssueToken(user.Username)
		if err != nil {
			return err
		}
		res.Token = tok.Value
		res.IsAdmin = user.IsAdmin
		return nil
	})
	metrics.AuthAttemptsTotal.WithLabelValues(authOutcome(res, err)).Inc()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type UsernameStatus struct {
	Exists   bool
	NeedsPin bool
}

// CheckUsername reports whether a user exists and still has to choose a
// PIN. It needs no authentication.
func (u *AuthUsecase) CheckUsername(_ context.Context, username string) (UsernameStatus, error) {
	var status UsernameStatus
	err := u.store.View(func(tx *store.Tx) error {
		user, err := tx.User(username)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		status = UsernameStatus{Exists: true, NeedsPin: user.PinState() == domain.PinUnset}
		return nil
	})
	return status, err
}

// VerifyToken resolves a bearer token to the username it was issued to.
func (u *AuthUsecase) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrTokenInvalid
	}
	return u.store.ValidateToken(ctx, token)
}

func authOutcome(res AuthResult, err error) string {
	switch {
	case err == nil && res.PinSet:
		return "pin_set"
	case err == nil:
		return "verified"
	case errors.Is(err, domain.ErrInvalidUsername):
		return "unknown_user"
	case errors.Is(err, domain.ErrPinRequired):
		return "pin_required"
	case errors.Is(err, domain.ErrInvalidPin):
		return "invalid_pin"
	case errors.Is(err, domain.ErrIncorrectPin):
		return "incorrect_pin"
	default:
		return "error"
	}
}
