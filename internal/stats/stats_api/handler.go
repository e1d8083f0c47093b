package stats_api

import (
	"net/http"

	"charity-events/internal/logger"
	"charity-events/internal/stats"
	"charity-events/internal/utils"
)

type Handler struct {
	Stats  *stats.Service
	Logger *logger.Logger
}

func NewHandler(svc *stats.Service, log *logger.Logger) *Handler {
	return &Handler{Stats: svc, Logger: log}
}

func (h *Handler) EventOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Stats.EventOverview(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "STATS", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event statistics", overview)
}

func (h *Handler) CategoryOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Stats.CategoryOverview(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "STATS", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category statistics", rows)
}
