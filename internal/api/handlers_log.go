package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/services"
)

type LogHandler struct {
	svc *services.FoodLogService
}

func NewLogHandler(svc *services.FoodLogService) *LogHandler { return &LogHandler{svc: svc} }

// GetDay returns the log for one date, empty when nothing was recorded.
func (h *LogHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log, err := h.svc.GetDay(r.Context(), userID, mux.Vars(r)["date"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, log)
}

// GetSummary totals one day against the caller's goals.
func (h *LogHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sum, err := h.svc.GetDaySummary(r.Context(), userID, mux.Vars(r)["date"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

// CreateEntry appends a new entry to the date's log. The server assigns
// the entry ID; any ID in the payload is ignored.
func (h *LogHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var in model.FoodEntry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	in.ID = ""
	log, err := h.svc.LogEntry(r.Context(), userID, mux.Vars(r)["date"], in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, log)
}

// PutEntry upserts an entry at a fixed ID. An existing entry is replaced
// in place; a new ID is appended. Retrying the same request is safe.
func (h *LogHandler) PutEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	vars := mux.Vars(r)
	var in model.FoodEntry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	in.ID = vars["entryId"]
	log, err := h.svc.LogEntry(r.Context(), userID, vars["date"], in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, log)
}

// DeleteEntry removes an entry. Absent IDs still return 204.
func (h *LogHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	vars := mux.Vars(r)
	if _, err := h.svc.DeleteEntry(r.Context(), userID, vars["date"], vars["entryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
