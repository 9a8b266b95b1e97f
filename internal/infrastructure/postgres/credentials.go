package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/torn-watcher/internal/domain"
)

// CredentialStore reads decrypted API keys through the database RPC
// get_decrypted_users(). Decryption happens inside Postgres.
type CredentialStore struct {
	pool *pgxpool.Pool
}

// NewPool opens a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{pool: pool}
}

func (s *CredentialStore) ListCredentials(ctx context.Context) ([]domain.UserCredential, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id, decrypted_key FROM get_decrypted_users()`)
	if err != nil {
		return nil, fmt.Errorf("get_decrypted_users: %w", err)
	}
	creds, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.UserCredential])
	if err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}
	return creds, nil
}
