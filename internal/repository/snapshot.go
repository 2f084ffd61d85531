package repository

import (
	"context"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
)

// SnapshotRepository persists the whole vault as one document.
// The store depends on this interface, not on a concrete backend, so the
// file and postgres backends are interchangeable and tests can pass a fake.
type SnapshotRepository interface {
	// Load returns the last saved state, or (nil, nil) when nothing was
	// ever saved.
	Load(ctx context.Context) (*domain.State, error)

	// Save replaces the persisted document with st. A returned error means
	// the previous document is still intact.
	Save(ctx context.Context, st *domain.State) error

	// Ping reports whether the backend is reachable and writable.
	Ping(ctx context.Context) error
}
