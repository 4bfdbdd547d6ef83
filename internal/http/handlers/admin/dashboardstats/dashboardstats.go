// Package dashboardstats обрабатывает GET /api/admin/dashboard/stats.
package dashboardstats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

type Service interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
}

type Response struct {
	response.Response
	Stats *models.DashboardStats `json:"stats"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика для панели администратора
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /admin/dashboard/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.dashboardstats"

	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.log.Error("failed to collect stats",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	render.JSON(w, r, Response{Response: response.OK(""), Stats: stats})
}
