// Package subscriptionupdate обрабатывает PUT /api/users/subscription/{userId}.
package subscriptionupdate

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
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

type Service interface {
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) (*models.User, error)
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
	const op = "handlers.users.subscriptionupdate"

	userID := chi.URLParam(r, "userId")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	var req models.SubscriptionUpdate
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

	user, err := h.service.UpdateSubscription(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			response.WriteError(w, r, http.StatusNotFound, response.MsgUserNotFound)
			return
		}
		log.Error("failed to update subscription", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}
	log.Info("subscription updated", slog.String("plan", req.Plan), slog.String("status", req.Status))

	render.JSON(w, r, Response{
		Response: response.OK("Subscription updated successfully"),
		User:     user,
	})
}
