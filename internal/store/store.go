// Package store holds the vault: every user record and every live token,
// guarded by one mutex and persisted as a whole after each mutation.
//
// All reads and writes go through a Tx. Update runs its callback against a
// private copy of the state, saves that copy through the SnapshotRepository
// and only then swaps it in, so a failed save leaves memory exactly as it
// was. The mutex is held for the whole sequence, which also serializes
// snapshot writes with respect to each other.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/metrics"
	"github.com/ErlanBelekov/pin-vault/internal/repository"
	"github.com/oklog/ulid/v2"
)

// ErrPersist wraps every failure to write the snapshot. The operation that
// triggered the write did not take effect.
var ErrPersist = errors.New("persist snapshot")

// saveTimeout bounds a single snapshot write. Saves ignore the caller's
// cancellation: a write the backend committed must also be swapped in.
const saveTimeout = 10 * time.Second

type Store struct {
	mu      sync.Mutex
	state   *domain.State
	repo    repository.SnapshotRepository
	logger  *slog.Logger
	now     func() time.Time
	random  io.Reader
	entropy *ulid.MonotonicEntropy
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRandom replaces crypto/rand as the source for token values.
func WithRandom(r io.Reader) Option {
	return func(s *Store) { s.random = r }
}

// New loads the persisted state. When the backend has never been written,
// the store starts with seed as the only user and saves that immediately.
func New(ctx context.Context, repo repository.SnapshotRepository, seed domain.SeedAdmin, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		repo:   repo,
		logger: logger.With("component", "store"),
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entropy = ulid.Monotonic(rand.Reader, 0)

	st, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if st == nil {
		if !domain.ValidUsername(seed.Username) {
			return nil, fmt.Errorf("seed admin: %w", domain.ErrInvalidUsername)
		}
		if !domain.ValidPin(seed.Pin) {
			return nil, fmt.Errorf("seed admin: %w", domain.ErrInvalidPin)
		}
		st = domain.NewSeededState(seed, s.now())
		if err := s.persist(ctx, st); err != nil {
			return nil, err
		}
		s.logger.Info("no prior state, seeded admin", "username", seed.Username)
	}

	s.state = st
	metrics.UsersTotal.Set(float64(len(st.Users)))
	metrics.ActiveTokens.Set(float64(len(st.Tokens)))
	s.logger.Info("state loaded", "users", len(st.Users), "tokens", len(st.Tokens))
	return s, nil
}

// View runs fn with a read-only Tx over the current state.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.newTx(s.state, false))
}

// Update runs fn with a writable Tx. If fn returns an error nothing is
// changed. If fn mutated anything, the new state is persisted before it
// becomes visible; a failed write is returned wrapped in ErrPersist.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(ctx, fn)
}

// ValidateToken resolves a bearer token to its username. An expired token
// is evicted in the same critical section that observed it. Failing to
// persist the eviction is logged, not returned: the token is invalid
// either way.
func (s *Store) ValidateToken(ctx context.Context, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.state.Tokens[value]
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if tok.ValidAt(s.now()) {
		return tok.Username, nil
	}

	err := s.updateLocked(ctx, func(tx *Tx) error {
		_, err := tx.ValidateToken(value)
		if errors.Is(err, domain.ErrTokenInvalid) {
			return nil
		}
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "evict expired token", "error", err)
	}
	return "", domain.ErrTokenInvalid
}

func (s *Store) updateLocked(ctx context.Context, fn func(tx *Tx) error) error {
	tx := s.newTx(s.state.Clone(), true)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := s.persist(ctx, tx.st); err != nil {
		return err
	}

	s.state = tx.st
	for _, f := range tx.onCommit {
		f()
	}
	metrics.UsersTotal.Set(float64(len(tx.st.Users)))
	metrics.ActiveTokens.Set(float64(len(tx.st.Tokens)))
	return nil
}

func (s *Store) persist(ctx context.Context, st *domain.State) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	start := time.Now()
	err := s.repo.Save(saveCtx, st)
	metrics.SnapshotWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SnapshotWriteFailuresTotal.Inc()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) newTx(st *domain.State, writable bool) *Tx {
	return &Tx{
		st:       st,
		now:      s.now(),
		writable: writable,
		random:   s.random,
		entropy:  s.entropy,
	}
}
