package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/store"
)

// ---- fakes ----

type memRepo struct {
	mu      sync.Mutex
	state   *domain.State
	saveErr error
}

func (r *memRepo) Load(_ context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, nil
	}
	return r.state.Clone(), nil
}

func (r *memRepo) Save(_ context.Context, st *domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.state = st.Clone()
	return nil
}

func (r *memRepo) Ping(_ context.Context) error { return nil }

func (r *memRepo) failSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *memRepo) persisted() *domain.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// ---- helpers ----

var errDiskFull = errors.New("disk full")

var testEpoch = time.Unix(1700000000, 0)

type fixture struct {
	repo  *memRepo
	store *store.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: &memRepo{}, now: testEpoch}
	s, err := store.New(
		context.Background(),
		f.repo,
		domain.SeedAdmin{Username: "admin", Pin: "7197"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		store.WithClock(func() time.Time { return f.now }),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	f.store = s
	return f
}

func (f *fixture) addUser(t *testing.T, username string, isAdmin bool) {
	t.Helper()
	err := f.store.Update(context.Background(), func(tx *store.Tx) error {
		_, err := tx.CreateUser(username, isAdmin)
		return err
	})
	if err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
}
