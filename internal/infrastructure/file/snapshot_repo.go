package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/snapshot"
)

// SnapshotRepository keeps the vault in a single JSON file. Saves go to a
// temporary file in the same directory which is then renamed over the
// target, so a crash mid-write leaves the previous document intact.
type SnapshotRepository struct {
	path string
}

func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{path: path}
}

func (r *SnapshotRepository) Load(_ context.Context) (*domain.State, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snapshot.Decode(data)
}

func (r *SnapshotRepository) Save(ctx context.Context, st *domain.State) error {
	data, err := snapshot.Encode(st)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	committed = true

	// Best effort: persist the rename itself. Not all platforms allow
	// syncing a directory handle.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Ping checks that a file can be created next to the snapshot.
func (r *SnapshotRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".ping.*")
	if err != nil {
		return fmt.Errorf("snapshot dir %q not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove ping file: %w", err)
	}
	return nil
}
