// Package subscription обрабатывает GET /api/users/subscription.
package subscription

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

type Service interface {
	SubscriptionStatus(user *models.User) models.SubscriptionView
}

type Response struct {
	response.Response
	Subscription models.SubscriptionView `json:"subscription"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.subscription"

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.log.Error("user not found in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		response.WriteError(w, r, http.StatusUnauthorized, middlewarectx.MsgTokenRequired)
		return
	}

	render.JSON(w, r, Response{
		Response:     response.OK(""),
		Subscription: h.service.SubscriptionStatus(user),
	})
}
