package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/store"
)

// flakyStore wraps a real store and fails Users().Exists with a storage
// fault a fixed number of times before delegating.
type flakyStore struct {
	store.Store
	failures int
}

func (s *flakyStore) Users() store.Users {
	return &flakyUsers{Users: s.Store.Users(), owner: s}
}

type flakyUsers struct {
	store.Users
	owner *flakyStore
}

func (u *flakyUsers) Exists(ctx context.Context, userID string) (bool, error) {
	if u.owner.failures > 0 {
		u.owner.failures--
		return false, fmt.Errorf("users exists: %w: connection reset", model.ErrStorageUnavailable)
	}
	return u.Users.Exists(ctx, userID)
}

func TestWithRetry_RecoversFromTransientFault(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("put settings: %w: timeout", model.ErrStorageUnavailable)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUpAfterAttemptBudget(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), func() error {
		attempts++
		return fmt.Errorf("get settings: %w: down", model.ErrStorageUnavailable)
	})
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Equal(t, retryAttempts, attempts)
}

func TestWithRetry_NonRetryableErrorReturnsImmediately(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), func() error {
		attempts++
		return model.ErrNotFound
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withRetry(ctx, func() error {
		attempts++
		return fmt.Errorf("list cache: %w: down", model.ErrStorageUnavailable)
	})
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Equal(t, 1, attempts)
}

func TestAuthService_ValidateRetriesTransientOutage(t *testing.T) {
	ctx := context.Background()
	base := newTestStore(t)
	reg, err := NewAuthService(base).Register(ctx, "flaky@example.com")
	require.NoError(t, err)

	flaky := &flakyStore{Store: base, failures: retryAttempts - 1}
	got, err := NewAuthService(flaky).Validate(ctx, reg.APIKey)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, got)
	assert.Zero(t, flaky.failures)
}

func TestAuthService_ValidateSurfacesPersistentOutage(t *testing.T) {
	ctx := context.Background()
	base := newTestStore(t)
	reg, err := NewAuthService(base).Register(ctx, "down@example.com")
	require.NoError(t, err)

	flaky := &flakyStore{Store: base, failures: 10}
	_, err = NewAuthService(flaky).Validate(ctx, reg.APIKey)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Equal(t, 10-retryAttempts, flaky.failures)
}
