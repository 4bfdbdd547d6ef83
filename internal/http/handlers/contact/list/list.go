// Package list обрабатывает GET /api/contact.
package list

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
	List(ctx context.Context, limit int) ([]*models.Contact, error)
}

type Response struct {
	response.Response
	Contacts []*models.Contact `json:"contacts"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.list"

	contacts, err := h.service.List(r.Context(), 0)
	if err != nil {
		h.log.Error("failed to list contacts",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}

	render.JSON(w, r, Response{Response: response.OK(""), Contacts: contacts})
}
