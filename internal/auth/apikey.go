// Package auth implements the credential codec, the per-request identity
// context, and the bearer middleware that ties them together.
//
// API keys are opaque bearer secrets of the form "flr_" + 32 URL-safe
// characters. A user's identity is the truncated SHA-256 of the full key,
// so no lookup table exists anywhere. The identity is the partition key
// for all stored data; it is not a secret, but only the original key
// recovers it.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/foodlogr/backend/internal/model"
)

const (
	// APIKeyPrefix tags generated keys so they are recognizable in configs
	// and support requests without revealing anything about the holder.
	APIKeyPrefix = "flr_"

	// apiKeyRandomLen is the number of random characters after the prefix.
	// 32 characters from a 64-symbol alphabet carry 192 bits of entropy.
	apiKeyRandomLen = 32

	// UserIDLen is the length of a derived user identity.
	UserIDLen = 32
)

// GenerateAPIKey returns a new API key from a cryptographically secure
// random source.
func GenerateAPIKey() (string, error) {
	// 24 random bytes encode to exactly 32 base64url characters.
	buf := make([]byte, apiKeyRandomLen/4*3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return APIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateAPIKeyFormat checks the shape of a key before it is hashed.
// It returns model.ErrInvalidCredentialFormat on any violation so garbage
// is rejected instead of silently hashed.
func ValidateAPIKeyFormat(key string) error {
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return model.ErrInvalidCredentialFormat
	}
	random := key[len(APIKeyPrefix):]
	if len(random) != apiKeyRandomLen {
		return model.ErrInvalidCredentialFormat
	}
	for _, c := range random {
		if !isURLSafeBase64(c) {
			return model.ErrInvalidCredentialFormat
		}
	}
	return nil
}

// DeriveUserID maps an API key to its user identity: hex SHA-256 of the
// full key, truncated to UserIDLen characters. The key must already have
// passed ValidateAPIKeyFormat.
func DeriveUserID(key string) (string, error) {
	if err := ValidateAPIKeyFormat(key); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:UserIDLen], nil
}

func isURLSafeBase64(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
