package store

import (
	"errors"
	"io"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/oklog/ulid/v2"
)

var errReadOnly = errors.New("store: mutation in read-only transaction")

// Tx is a view of the vault valid only inside View or Update. Users
// returned by Tx are copies; changes go through the mutating methods.
type Tx struct {
	st       *domain.State
	now      time.Time
	writable bool
	dirty    bool
	random   io.Reader
	entropy  *ulid.MonotonicEntropy
	onCommit []func()
}

// Now is the single clock reading shared by everything in this Tx.
func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) mutate() error {
	if !tx.writable {
		return errReadOnly
	}
	tx.dirty = true
	return nil
}

func (tx *Tx) user(username string) (*domain.User, error) {
	u, ok := tx.st.Users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// afterCommit defers f until the Tx has been persisted and swapped in.
func (tx *Tx) afterCommit(f func()) {
	tx.onCommit = append(tx.onCommit, f)
}
