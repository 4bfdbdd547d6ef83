// Package userremove обрабатывает DELETE /api/admin/users/{userId}.
package userremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

type Service interface {
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userremove"

	userID := chi.URLParam(r, "userId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	if err := h.service.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteError(w, r, http.StatusNotFound, response.MsgUserNotFound)
			return
		}
		log.Error("failed to delete user", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}
	log.Info("user deleted")

	render.JSON(w, r, response.OK("User deleted successfully"))
}
