package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodlogr/backend/internal/model"
)

func TestIdentityFromContext_RoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "0123456789abcdef0123456789abcdef")
	got, err := IdentityFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", got)
}

func TestIdentityFromContext_Unset(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestIdentityFromContext_EmptyValue(t *testing.T) {
	_, err := IdentityFromContext(WithIdentity(context.Background(), ""))
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestIdentityFromContext_NotLeakedAcrossContexts(t *testing.T) {
	_ = WithIdentity(context.Background(), "user-a")

	// A sibling context created from the same parent never sees user-a.
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}
