package api

import (
	"net/http"
	"time"

	"github.com/foodlogr/backend/internal/api/respond"
	"github.com/foodlogr/backend/internal/auth"
	"github.com/foodlogr/backend/internal/nutrition"
	"github.com/foodlogr/backend/internal/services"
)

type ReportHandler struct {
	svc *services.ReportService
	now func() time.Time
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc, now: time.Now}
}

// Weekly returns the rollup for the 7 days ending at the end query
// parameter, defaulting to today.
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	end := h.now()
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err = time.Parse(nutrition.DateLayout, raw)
		if err != nil {
			respond.WriteBadRequest(w, "end must be YYYY-MM-DD")
			return
		}
	}
	report, err := h.svc.Weekly(r.Context(), userID, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}
