package auth

import (
	"context"

	"github.com/foodlogr/backend/internal/model"
)

// identityKey is unexported so only this package can populate the context.
type identityKey struct{}

// WithIdentity returns a context carrying the authenticated user identity.
// It is called exactly once per request, at the boundary where the bearer
// key is validated. The value is request-scoped: it lives and dies with the
// request's context and is never shared across in-flight requests.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFromContext extracts the authenticated identity. Operations must
// call this rather than defaulting to any partition; outside an
// authenticated request it fails with model.ErrUnauthenticated.
func IdentityFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(identityKey{}).(string)
	if !ok || userID == "" {
		return "", model.ErrUnauthenticated
	}
	return userID, nil
}
