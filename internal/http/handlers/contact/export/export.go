// Package export обрабатывает GET /api/contact/export: выгрузку всех сообщений в CSV.
package export

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/services/contact"
)

type Service interface {
	ExportAll(ctx context.Context, w io.Writer) (int, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary Выгрузка всех сообщений в CSV
// @Tags Contact
// @Produce  text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 403 {object} response.Response "Нужны права администратора"
// @Router /contact/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filename := contact.ExportFilename(nil, h.now())
	out := NewCSVWriter(w, filename)
	n, err := h.service.ExportAll(r.Context(), out)
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
