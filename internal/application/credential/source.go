// Package credential yields the pool of usable Torn API keys for a run.
package credential

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/torn-watcher/internal/domain"
)

// Source lists every enabled user's decrypted key, fresh on each call.
type Source interface {
	ListCredentials(ctx context.Context) ([]domain.UserCredential, error)
}

type userStore interface {
	ListEnabled(ctx context.Context) ([]domain.User, error)
}

type keyOpener interface {
	Open(sealed string) (string, error)
}

type dynamoSource struct {
	users  userStore
	cipher keyOpener
}

// NewDynamoSource decrypts the encrypted_key of every enabled user row.
// Rows without a key or whose key fails to decrypt are left out of the pool.
func NewDynamoSource(users userStore, cipher keyOpener) Source {
	return &dynamoSource{users: users, cipher: cipher}
}

func (s *dynamoSource) ListCredentials(ctx context.Context) ([]domain.UserCredential, error) {
	users, err := s.users.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled users: %w", err)
	}
	creds := make([]domain.UserCredential, 0, len(users))
	for _, u := range users {
		if u.EncryptedKey == "" {
			continue
		}
		key, err := s.cipher.Open(u.EncryptedKey)
		if err != nil {
			slog.Warn("skipping undecryptable key", "user_id", u.UserID, "error", err)
			continue
		}
		creds = append(creds, domain.UserCredential{UserID: u.UserID, DecryptedKey: key})
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].UserID < creds[j].UserID })
	return creds, nil
}
