// Package api wires the REST surface: gorilla/mux routing, bearer auth,
// and JSON handlers over the services.
package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/model"
)

// writeServiceError maps a service error to its HTTP status. Storage
// faults are logged with full detail but clients only see a generic 503.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidEmail),
		errors.Is(err, model.ErrInvalidCredentialFormat):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrUnknownCredential),
		errors.Is(err, model.ErrUnauthenticated),
		errors.Is(err, model.ErrUnknownPartition):
		// Identity failures share one response shape so callers cannot
		// distinguish a bad key from a vanished account.
		respond.WriteError(w, http.StatusUnauthorized, "")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrStorageUnavailable):
		log.Error().Err(err).Msg("storage unavailable")
		respond.WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		log.Error().Err(err).Msg("unhandled service error")
		respond.WriteInternalError(w, "internal error")
	}
}
