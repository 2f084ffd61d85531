package store

import (
	"slices"
	"strings"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/metrics"
	"github.com/oklog/ulid/v2"
)

// User returns a copy of the named user or domain.ErrUserNotFound.
func (tx *Tx) User(username string) (*domain.User, error) {
	u, err := tx.user(username)
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// Users returns copies of every user, ordered by username.
func (tx *Tx) Users() []*domain.User {
	out := make([]*domain.User, 0, len(tx.st.Users))
	for _, u := range tx.st.Users {
		out = append(out, u.Clone())
	}
	slices.SortFunc(out, func(a, b *domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return out
}

// CreateUser adds a user with no PIN and no bookmarks.
func (tx *Tx) CreateUser(username string, isAdmin bool) (*domain.User, error) {
	if !domain.ValidUsername(username) {
		return nil, domain.ErrInvalidUsername
	}
	if _, ok := tx.st.Users[username]; ok {
		return nil, domain.ErrUserExists
	}
	if err := tx.mutate(); err != nil {
		return nil, err
	}

	u := &domain.User{
		Username: username,
		IsAdmin:  isAdmin,
		URLs:     make(map[string]domain.Bookmark),
	}
	tx.st.Users[username] = u
	return u.Clone(), nil
}

// SetPin stores pin for the user. The first PIN also stamps Created.
func (tx *Tx) SetPin(username, pin string) error {
	if !domain.ValidPin(pin) {
		return domain.ErrInvalidPin
	}
	u, err := tx.user(username)
	if err != nil {
		return err
	}
	if err := tx.mutate(); err != nil {
		return err
	}

	u.Pin = &pin
	if u.Created == nil {
		created := tx.now
		u.Created = &created
	}
	return nil
}

func (tx *Tx) SetAdmin(username string, isAdmin bool) error {
	u, err := tx.user(username)
	if err != nil {
		return err
	}
	if err := tx.mutate(); err != nil {
		return err
	}

	u.IsAdmin = isAdmin
	return nil
}

// DeleteUser removes the user together with its bookmarks and revokes
// every token bound to it.
func (tx *Tx) DeleteUser(username string) error {
	if _, err := tx.user(username); err != nil {
		return err
	}
	if err := tx.mutate(); err != nil {
		return err
	}

	delete(tx.st.Users, username)
	tx.RevokeAll(username)
	return nil
}

// AddBookmark stores a new bookmark under a fresh ULID and returns the id.
func (tx *Tx) AddBookmark(username, url, nickname string) (string, error) {
	if url == "" || nickname == "" {
		return "", domain.ErrMissingField
	}
	u, err := tx.user(username)
	if err != nil {
		return "", err
	}
	if err := tx.mutate(); err != nil {
		return "", err
	}

	id, err := ulid.New(ulid.Timestamp(tx.now), tx.entropy)
	if err != nil {
		return "", err
	}
	u.URLs[id.String()] = domain.Bookmark{URL: url, Nickname: nickname}
	tx.afterCommit(func() { metrics.BookmarkOpsTotal.WithLabelValues("create").Inc() })
	return id.String(), nil
}

func (tx *Tx) RenameBookmark(username, id, nickname string) error {
	if nickname == "" {
		return domain.ErrMissingField
	}
	u, err := tx.user(username)
	if err != nil {
		return err
	}
	b, ok := u.URLs[id]
	if !ok {
		return domain.ErrBookmarkNotFound
	}
	if err := tx.mutate(); err != nil {
		return err
	}

	b.Nickname = nickname
	u.URLs[id] = b
	tx.afterCommit(func() { metrics.BookmarkOpsTotal.WithLabelValues("rename").Inc() })
	return nil
}

func (tx *Tx) DeleteBookmark(username, id string) error {
	u, err := tx.user(username)
	if err != nil {
		return err
	}
	if _, ok := u.URLs[id]; !ok {
		return domain.ErrBookmarkNotFound
	}
	if err := tx.mutate(); err != nil {
		return err
	}

	delete(u.URLs, id)
	tx.afterCommit(func() { metrics.BookmarkOpsTotal.WithLabelValues("delete").Inc() })
	return nil
}
