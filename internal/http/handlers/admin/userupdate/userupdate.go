// Package userupdate обрабатывает PUT /api/admin/users/{userId}.
package userupdate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
	"github.com/magabrotheeeer/documind-api/internal/services/users"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

// Тексты ошибок обновления.
const (
	MsgNoFields   = "No fields to update"
	MsgEmailTaken = "User already exists with this email"
)

type Service interface {
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

type Response struct {
	response.Response
	User *models.User `json:"user"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userupdate"

	userID := chi.URLParam(r, "userId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	var req models.UserUpdate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.WriteError(w, r, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidationError(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), userID, req)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrEmptyUpdate):
		response.WriteError(w, r, http.StatusBadRequest, MsgNoFields)
		return
	case errors.Is(err, storage.ErrUserNotFound):
		response.WriteError(w, r, http.StatusNotFound, response.MsgUserNotFound)
		return
	case errors.Is(err, storage.ErrUserExists):
		response.WriteError(w, r, http.StatusBadRequest, MsgEmailTaken)
		return
	default:
		log.Error("failed to update user", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}
	log.Info("user updated")

	render.JSON(w, r, Response{
		Response: response.OK("User updated successfully"),
		User:     user,
	})
}
