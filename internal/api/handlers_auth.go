package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/services"
)

type AuthHandler struct {
	svc     *services.AuthService
	baseURL string
}

func NewAuthHandler(svc *services.AuthService, baseURL string) *AuthHandler {
	return &AuthHandler{svc: svc, baseURL: baseURL}
}

// Register issues a new API key. The key appears in this response and
// nowhere else; it cannot be recovered later.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	reg, err := h.svc.Register(r.Context(), in.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]string{
		"credential": reg.APIKey,
		"message":    "Store this credential now. It is shown exactly once and cannot be recovered.",
		"setupCommand": fmt.Sprintf(
			"curl -X PUT %s/api/settings -H 'Authorization: Bearer %s' -H 'Content-Type: application/json' -d '{\"calorieGoal\":2000,\"proteinGoal\":150,\"carbGoal\":200,\"restingEnergy\":1800}'",
			h.baseURL, reg.APIKey),
	})
}

// Validate reports whether a credential resolves to a registered account.
// The response carries only a boolean so it cannot be used to harvest
// identities.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if _, err := h.svc.Validate(r.Context(), in.Credential); err != nil {
		// Only a definitively unknown credential is "valid": false. A
		// storage fault must not be reported as a verdict on the key.
		if errors.Is(err, model.ErrUnknownCredential) {
			respond.WriteJSON(w, http.StatusOK, map[string]bool{"valid": false})
			return
		}
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// Rotate swaps the caller's credential for a fresh one. The old key stops
// working immediately; all data moves to the new identity.
func (h *AuthHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "")
		return
	}
	reg, err := h.svc.Rotate(r.Context(), apiKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"credential": reg.APIKey,
		"message":    "Credential rotated. The previous credential no longer works.",
	})
}
