package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
)

type staticChecker struct{ known map[string]bool }

func (c staticChecker) UserExists(_ context.Context, userID string) (bool, error) {
	return c.known[userID], nil
}

func TestMiddleware_AuthenticatedRequest(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	userID, err := DeriveUserID(key)
	require.NoError(t, err)

	authorizer := NewAuthorizer(staticChecker{known: map[string]bool{userID: true}})

	var gotIdentity string
	handler := Middleware(authorizer, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotIdentity)
}

func TestMiddleware_RejectsBeforeHandler(t *testing.T) {
	unknown, err := GenerateAPIKey()
	require.NoError(t, err)

	authorizer := NewAuthorizer(staticChecker{known: map[string]bool{}})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"malformed key", "Bearer garbage"},
		{"well-formed unknown key", "Bearer " + unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Middleware(authorizer, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.False(t, called, "handler must not run unauthenticated")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			// Constant-shape body: no hint of why the credential failed.
			assert.JSONEq(t, `{"error":"Unauthorized","code":401}`, rec.Body.String())
		})
	}
}

func TestAuthorizer_SameErrorKindForMalformedAndUnknown(t *testing.T) {
	unknown, err := GenerateAPIKey()
	require.NoError(t, err)

	authorizer := NewAuthorizer(staticChecker{known: map[string]bool{}})

	_, errMalformed := authorizer.Authorize(context.Background(), "garbage")
	_, errUnknown := authorizer.Authorize(context.Background(), unknown)

	assert.ErrorIs(t, errMalformed, model.ErrUnknownCredential)
	assert.ErrorIs(t, errUnknown, model.ErrUnknownCredential)
}
