// Package exportbydate обрабатывает GET /api/contact/export-by-date?from=YYYY-MM-DD&to=YYYY-MM-DD.
package exportbydate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/export"
	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/services/contact"
)

// MsgInvalidRange — ответ при отсутствующих или некорректных датах.
const MsgInvalidRange = "Both from and to dates are required in YYYY-MM-DD format, with from not after to"

type Service interface {
	ExportByDate(ctx context.Context, w io.Writer, r models.DateRange) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.exportbydate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dateRange, err := contact.ParseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		log.Info("invalid date range", sl.Err(err))
		response.WriteError(w, r, http.StatusBadRequest, MsgInvalidRange)
		return
	}

	filename := contact.ExportFilename(&dateRange, h.now())
	out := export.NewCSVWriter(w, filename)
	n, err := h.service.ExportByDate(r.Context(), out, dateRange)
	if err != nil {
		log.Error("failed to export contacts", sl.Err(err))
		out.Fail(r)
		return
	}
	if err = out.Flush(); err != nil {
		log.Error("failed to write export", sl.Err(err))
		return
	}
	log.Info("contacts exported", slog.Int("records", n), slog.String("filename", filename))
}
