// Package health содержит проверки доступности сервиса и базы данных.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/documind-api/internal/http/response"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
)

type Response struct {
	response.Response
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	log *slog.Logger
	now func() time.Time
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log, now: time.Now}
}

// ServeHTTP обрабатывает GET /health.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response:  response.OK("Server is running"),
		Timestamp: h.now().UTC(),
	})
}

// Pinger проверяет соединение с базой данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBCheck обрабатывает GET /api/db-check.
type DBCheck struct {
	log     *slog.Logger
	db      Pinger
	timeout time.Duration
}

func NewDBCheck(log *slog.Logger, db Pinger) *DBCheck {
	return &DBCheck{log: log, db: db, timeout: 5 * time.Second}
}

func (h *DBCheck) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.dbcheck"

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", slog.String("op", op), sl.Err(err))
		response.WriteError(w, r, http.StatusInternalServerError, "Database connection failed")
		return
	}
	render.JSON(w, r, response.OK("Database connection successful"))
}
