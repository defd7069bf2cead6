package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/trackhaus/trackhaus-backend/internal/modules/reporting/application"
)

type ReportingHandler struct {
	service *application.ReportingService
}

func NewReportingHandler(service *application.ReportingService) *ReportingHandler {
	return &ReportingHandler{service: service}
}

// Earnings handles GET /reports/earnings (admin only)
func (h *ReportingHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	report, err := h.service.Earnings(r.Context(), page)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
