// Package userlist обрабатывает GET /api/admin/users.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/models"
)

type Service interface {
	List(ctx context.Context, q models.UserListQuery) (*models.UserPage, error)
}

type Response struct {
	response.Response
	Users      []*models.User    `json:"users"`
	Pagination models.Pagination `json:"pagination"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query()
	// нечисловые page/limit становятся нулем и заменяются значениями по умолчанию
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.service.List(r.Context(), models.UserListQuery{
		Page:      page,
		Limit:     limit,
		Search:    query.Get("search"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	})
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	users := result.Users
	if users == nil {
		users = []*models.User{}
	}
	render.JSON(w, r, Response{
		Response:   response.OK(""),
		Users:      users,
		Pagination: result.Pagination,
	})
}
