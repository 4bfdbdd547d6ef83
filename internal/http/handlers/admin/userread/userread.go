// Package userread обрабатывает GET /api/admin/users/{userId}.
package userread

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
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

type Service interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type Response struct {
	response.Response
	User *models.User `json:"user"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userread"

	userID := chi.URLParam(r, "userId")
	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteError(w, r, http.StatusNotFound, response.MsgUserNotFound)
			return
		}
		h.log.Error("failed to get user",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("user_id", userID),
			sl.Err(err),
		)
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	render.JSON(w, r, Response{Response: response.OK(""), User: user})
}
