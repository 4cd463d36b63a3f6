// Package services implements the application operations on top of the
// store interfaces. Handlers and MCP tools call in here; nothing in this
// package touches HTTP.
package services

import (
	"context"

	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
	"github.com/foodlogr/backend/internal/validate"
)

// Registration is the result of issuing a credential. APIKey is shown to
// the caller exactly once; only the derived UserID is ever stored.
type Registration struct {
	APIKey string
	UserID string
}

// AuthService issues, validates, and rotates API keys.
type AuthService struct {
	store store.Store
}

func NewAuthService(s store.Store) *AuthService { return &AuthService{store: s} }

// Register issues a fresh API key and writes the presence record for its
// derived identity. The email is kept for support lookups only and is not
// required to be unique.
func (s *AuthService) Register(ctx context.Context, email string) (*Registration, error) {
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	key, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	userID, err := auth.DeriveUserID(key)
	if err != nil {
		return nil, err
	}
	if err := withRetry(ctx, func() error {
		_, err := s.store.Users().Create(ctx, &model.User{UserID: userID, Email: email})
		return err
	}); err != nil {
		return nil, err
	}
	return &Registration{APIKey: key, UserID: userID}, nil
}

// Validate reports whether a key resolves to a registered identity. Both
// malformed and unknown keys fail with model.ErrUnknownCredential so the
// response shape never reveals which kind of failure occurred.
func (s *AuthService) Validate(ctx context.Context, apiKey string) (string, error) {
	userID, err := auth.DeriveUserID(apiKey)
	if err != nil {
		return "", model.ErrUnknownCredential
	}
	exists, err := retryValue(ctx, func() (bool, error) {
		return s.store.Users().Exists(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	if !exists {
		return "", model.ErrUnknownCredential
	}
	return userID, nil
}

// Rotate replaces a valid key with a fresh one, moving the entire
// partition to the new derived identity. The old key stops working the
// moment Rotate returns.
func (s *AuthService) Rotate(ctx context.Context, oldKey string) (*Registration, error) {
	oldID, err := s.Validate(ctx, oldKey)
	if err != nil {
		return nil, err
	}
	newKey, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	newID, err := auth.DeriveUserID(newKey)
	if err != nil {
		return nil, err
	}
	if err := withRetry(ctx, func() error {
		return s.store.Users().Rekey(ctx, oldID, newID)
	}); err != nil {
		return nil, err
	}
	return &Registration{APIKey: newKey, UserID: newID}, nil
}

// UserExists satisfies auth.UserChecker so the service can back the
// bearer middleware directly.
func (s *AuthService) UserExists(ctx context.Context, userID string) (bool, error) {
	return retryValue(ctx, func() (bool, error) {
		return s.store.Users().Exists(ctx, userID)
	})
}
