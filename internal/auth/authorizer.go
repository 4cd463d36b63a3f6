package auth

import (
	"context"

	"github.com/foodlogr/backend/internal/model"
)

// UserChecker reports whether an identity's partition has been registered.
// The store's user presence record satisfies this.
type UserChecker interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Authorizer resolves a bearer API key to a verified user identity.
type Authorizer interface {
	// Authorize re-derives the identity from the key and confirms the
	// partition exists. Malformed and unknown keys both surface as
	// model.ErrUnknownCredential so responses cannot be used as an
	// oracle for which keys are well-formed.
	Authorize(ctx context.Context, apiKey string) (string, error)
}

type keyAuthorizer struct {
	users UserChecker
}

// NewAuthorizer returns the store-backed Authorizer.
func NewAuthorizer(users UserChecker) Authorizer {
	return &keyAuthorizer{users: users}
}

func (a *keyAuthorizer) Authorize(ctx context.Context, apiKey string) (string, error) {
	userID, err := DeriveUserID(apiKey)
	if err != nil {
		return "", model.ErrUnknownCredential
	}
	exists, err := a.users.UserExists(ctx, userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", model.ErrUnknownCredential
	}
	return userID, nil
}
