// Package summary обрабатывает GET /api/contact/summary.
package summary

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/exportbydate"
	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/services/contact"
)

type Service interface {
	Summary(ctx context.Context, r *models.DateRange) ([]models.ContactDaySummary, error)
}

type Response struct {
	response.Response
	Summary []models.ContactDaySummary `json:"summary"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.summary"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// без from и to сводка строится по всем сообщениям
	var dateRange *models.DateRange
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from != "" || to != "" {
		parsed, err := contact.ParseDateRange(from, to)
		if err != nil {
			log.Info("invalid date range", sl.Err(err))
			response.WriteError(w, r, http.StatusBadRequest, exportbydate.MsgInvalidRange)
			return
		}
		dateRange = &parsed
	}

	days, err := h.service.Summary(r.Context(), dateRange)
	if err != nil {
		log.Error("failed to build summary", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	render.JSON(w, r, Response{Response: response.OK(""), Summary: days})
}
