package api

import (
	"encoding/json"
	"net/http"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/services"
)

type SettingsHandler struct {
	svc *services.FoodLogService
}

func NewSettingsHandler(svc *services.FoodLogService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Put fully replaces the caller's goals document.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var in model.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := h.svc.SetupUser(r.Context(), userID, in); err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := h.svc.GetSettings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Get returns the caller's goals; 404 until setup has run.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := h.svc.GetSettings(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
