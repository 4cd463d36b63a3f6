package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foodlogr/backend/internal/model"
)

// ExtractAPIKey pulls the bearer API key out of the Authorization header.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")
	}
	return parts[1], nil
}

// Middleware authenticates every request it wraps. On success the request
// context carries the derived identity; otherwise the request is rejected
// with a constant-shape 401 before any handler logic runs. Missing,
// malformed, and unknown credentials are indistinguishable to the caller.
func Middleware(authorizer Authorizer, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := ExtractAPIKey(r)
			if err != nil {
				writeUnauthenticated(w)
				return
			}
			userID, err := authorizer.Authorize(r.Context(), apiKey)
			if err != nil {
				if !errors.Is(err, model.ErrUnknownCredential) {
					log.Error().Err(err).Msg("authorization check failed")
				}
				writeUnauthenticated(w)
				return
			}
			log.Debug().Str("user", userID[:8]).Msg("request authenticated")
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID)))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","code":401}`))
}
