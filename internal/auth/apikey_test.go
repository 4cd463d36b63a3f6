package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlogr/backend/internal/model"
)

func TestGenerateAPIKey_Format(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, APIKeyPrefix))
	assert.Len(t, key, len(APIKeyPrefix)+32)
	assert.NoError(t, ValidateAPIKeyFormat(key))
}

func TestDeriveUserID_Deterministic(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)

	id1, err := DeriveUserID(key)
	require.NoError(t, err)
	id2, err := DeriveUserID(key)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, UserIDLen)
}

func TestDeriveUserID_NoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		key, err := GenerateAPIKey()
		require.NoError(t, err)
		id, err := DeriveUserID(key)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "identity collision after %d keys", i)
		seen[id] = struct{}{}
	}
}

func TestValidateAPIKeyFormat_Rejects(t *testing.T) {
	valid, err := GenerateAPIKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"wrong prefix", "sk_" + valid[len(APIKeyPrefix):]},
		{"too short", APIKeyPrefix + "abc"},
		{"too long", valid + "x"},
		{"bad alphabet", APIKeyPrefix + strings.Repeat("+", 32)},
		{"whitespace", APIKeyPrefix + strings.Repeat("a", 31) + " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKeyFormat(tt.key)
			assert.ErrorIs(t, err, model.ErrInvalidCredentialFormat)

			_, err = DeriveUserID(tt.key)
			assert.ErrorIs(t, err, model.ErrInvalidCredentialFormat)
		})
	}
}
