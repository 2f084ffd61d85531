package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/snapshot"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository stores the vault document in the single row of
// vault_snapshot. The upsert is one statement, so a save either replaces
// the whole document or leaves the previous one untouched.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

func (r *SnapshotRepository) Load(ctx context.Context) (*domain.State, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM vault_snapshot WHERE id = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot.Decode(doc)
}

func (r *SnapshotRepository) Save(ctx context.Context, st *domain.State) error {
	doc, err := snapshot.Encode(st)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO vault_snapshot (id, document, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		doc,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
