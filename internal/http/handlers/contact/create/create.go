// Package create обрабатывает POST /api/contact.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

// MsgSaveFailed — ответ при ошибке сохранения.
const MsgSaveFailed = "Internal server error. Please try again later."

type Service interface {
	Save(ctx context.Context, in models.ContactInput) (*models.Contact, error)
}

type Response struct {
	response.Response
	ID primitive.ObjectID `json:"id"`
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

// ServeHTTP godoc
// @Summary Отправка формы обратной связи
// @Tags Contact
// @Accept  json
// @Produce  json
// @Param request body models.ContactInput true "Сообщение"
// @Success 201 {object} Response
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 429 {object} response.Response "Слишком много запросов"
// @Router /contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ContactInput
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

	contact, err := h.service.Save(r.Context(), req)
	if err != nil {
		log.Error("failed to save contact message", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, MsgSaveFailed)
		return
	}
	log.Info("contact message saved", slog.String("contact_id", contact.ID.Hex()))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Response: response.OK("Contact message saved successfully"),
		ID:       contact.ID,
	})
}
