package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// TokenTTL is the fixed validity window of an issued token. Re-authentication
// always issues a fresh token; existing tokens are never extended.
const TokenTTL = 24 * time.Hour

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPin      = errors.New("PIN must be 4 digits")
	ErrPinRequired     = errors.New("PIN needs to be set")
	ErrIncorrectPin    = errors.New("incorrect PIN")
	ErrTokenInvalid    = errors.New("token is invalid or expired")
	ErrForbidden       = errors.New("forbidden")
	ErrSelfDelete      = errors.New("cannot delete yourself")
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ValidPin reports whether pin is exactly four ASCII digits.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// ValidUsername rejects empty and whitespace-only names.
func ValidUsername(username string) bool {
	return strings.TrimSpace(username) != ""
}

// PinState is the position of a user in the PIN lifecycle.
type PinState int

const (
	PinUnset PinState = iota
	PinSet
)

type User struct {
	Username string
	Pin      *string    // nil until the PIN is first established
	Created  *time.Time // stamped together with the first PIN
	IsAdmin  bool
	URLs     map[string]Bookmark
}

func (u *User) PinState() PinState {
	if u.Pin == nil {
		return PinUnset
	}
	return PinSet
}

func (u *User) HasPin() bool {
	return u.Pin != nil
}

// Token binds an opaque bearer credential to a username until ExpiresAt.
type Token struct {
	Value     string
	Username  string
	ExpiresAt time.Time
}

// ValidAt reports whether the token is still usable at now. The expiry
// instant itself is already invalid.
func (t Token) ValidAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
