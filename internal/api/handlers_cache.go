package api

import (
	"encoding/json"
	"net/http"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/model"
	"github.com/foodlogr/backend/internal/services"
)

type CacheHandler struct {
	svc *services.FoodLogService
}

func NewCacheHandler(svc *services.FoodLogService) *CacheHandler { return &CacheHandler{svc: svc} }

// Search lists cached foods matching the q parameter, most-used first.
// An empty q lists everything.
func (h *CacheHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items, err := h.svc.SearchCache(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []model.CacheItem{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// Put saves a reusable food. With reuse=true an existing item only bumps
// its use counter; otherwise the payload's values replace the stored ones.
func (h *CacheHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var in struct {
		model.CacheItem
		Reuse bool `json:"reuse"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	item, err := h.svc.SaveCacheItem(r.Context(), userID, in.CacheItem, in.Reuse)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, item)
}
