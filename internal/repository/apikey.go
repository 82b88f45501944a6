package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/auth"
)

const findAPIKeySQL = `SELECT key_hash, user_id, is_admin, label
	FROM api_keys WHERE key_hash = $1`

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash resolves a hashed API key to its account.
func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*auth.Account, error) {
	rows, err := r.pool.Query(ctx, findAPIKeySQL, keyHash)
	if err != nil {
		return nil, fmt.Errorf("finding api key: %w", err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.Account, error) {
		var a auth.Account
		err := row.Scan(&a.KeyHash, &a.UserID, &a.Admin, &a.Label)
		return a, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("finding api key: %w", err)
	}
	return &a, nil
}
