// Package enroll registers a user's API key and push device so the scheduled
// functions pick them up on their next run.
package enroll

import (
	"context"
	"fmt"

	"github.com/torn-watcher/internal/domain"
	"github.com/torn-watcher/internal/infrastructure/torn"
	"github.com/torn-watcher/internal/pkg/validate"
)

type Request struct {
	APIKey    string `json:"api_key" validate:"required,len=16,alphanum"`
	PushToken string `json:"push_token"`
	Platform  string `json:"platform" validate:"omitempty,oneof=ios android"`
}

type Service interface {
	Enroll(ctx context.Context, req Request) (*domain.User, error)
}

type userStore interface {
	UpsertKey(ctx context.Context, userID int64, name, encryptedKey string) (*domain.User, error)
}

type deviceStore interface {
	Register(ctx context.Context, d *domain.Device) error
}

type profileFetcher interface {
	User(ctx context.Context, key string, id int64, selections ...string) (*torn.UserResponse, error)
}

type keySealer interface {
	Seal(plaintext string) (string, error)
}

type ServiceDeps struct {
	UserRepo   userStore
	DeviceRepo deviceStore
	Torn       profileFetcher
	Cipher     keySealer
}

type service struct {
	users   userStore
	devices deviceStore
	torn    profileFetcher
	cipher  keySealer
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.UserRepo, devices: deps.DeviceRepo, torn: deps.Torn, cipher: deps.Cipher}
}

// Enroll checks the key against Torn, stores it sealed on the user row and
// registers the push device when a token is given. Re-enrolling only touches
// the key fields, so flags and notification preferences are kept, and a token
// that is already registered stays a single device.
func (s *service) Enroll(ctx context.Context, req Request) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	profile, err := s.torn.User(ctx, req.APIKey, 0, torn.SelProfile)
	if err != nil {
		if torn.IsAPIError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("check api key: %w", err)
	}
	if profile.PlayerID == 0 {
		return nil, fmt.Errorf("%w: key returned no player", domain.ErrUnauthorized)
	}

	sealed, err := s.cipher.Seal(req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("seal api key: %w", err)
	}

	user, err := s.users.UpsertKey(ctx, profile.PlayerID, profile.Name, sealed)
	if err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	if req.PushToken != "" {
		d := &domain.Device{
			DeviceID: domain.DeviceIDForToken(req.PushToken),
			UserID:   user.UserID,
			Token:    req.PushToken,
			Platform: req.Platform,
			Enable:   true,
		}
		if err := s.devices.Register(ctx, d); err != nil {
			return nil, fmt.Errorf("store device: %w", err)
		}
	}
	return user, nil
}
