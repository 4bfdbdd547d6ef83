// Package documind собирает HTTP-приложение DocuMind API.
package documind

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/unrolled/secure"

	_ "github.com/magabrotheeeer/documind-api/docs"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/admin/dashboardstats"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/admin/userread"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/admin/userremove"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/admin/userupdate"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/create"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/export"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/exportbydate"
	contactlist "github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/list"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/contact/summary"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/health"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/users/login"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/users/profile"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/users/register"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/users/subscription"
	"github.com/magabrotheeeer/documind-api/internal/http/handlers/users/subscriptionupdate"
	"github.com/magabrotheeeer/documind-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/documind-api/internal/http/response"
	authservice "github.com/magabrotheeeer/documind-api/internal/services/auth"
	contactservice "github.com/magabrotheeeer/documind-api/internal/services/contact"
	statsservice "github.com/magabrotheeeer/documind-api/internal/services/stats"
	userservice "github.com/magabrotheeeer/documind-api/internal/services/users"
)

// Тексты ответов уровня маршрутизатора.
const (
	MsgNotFound         = "API endpoint not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgContactLimited   = "Too many contact form submissions, please try again later."
)

// Deps — зависимости маршрутов.
type Deps struct {
	Logger   *slog.Logger
	Auth     *authservice.Service
	Users    *userservice.Service
	Contacts *contactservice.Service
	Stats    *statsservice.Service

	DB health.Pinger

	APILimiter     middlewarectx.Limiter
	ContactLimiter middlewarectx.Limiter

	Registry    *prometheus.Registry
	FrontendURL string
	Development bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		secure.New(secure.Options{
			FrameDeny:          true,
			ContentTypeNosniff: true,
			BrowserXssFilter:   true,
			ReferrerPolicy:     "strict-origin-when-cross-origin",
			IsDevelopment:      d.Development,
		}).Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{d.FrontendURL},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		metrics.Middleware,
	)

	authenticated := middlewarectx.JWTMiddleware(d.Auth, logger)

	r.Get("/health", health.New(logger).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, d.APILimiter, response.MsgTooManyRequests))

		r.Get("/db-check", health.NewDBCheck(logger, d.DB).ServeHTTP)

		r.Route("/users", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/profile", profile.New(logger).ServeHTTP)
				r.Get("/subscription", subscription.New(logger, d.Users).ServeHTTP)
				r.With(middlewarectx.RequireAdmin).
					Put("/subscription/{userId}", subscriptionupdate.New(logger, d.Users).ServeHTTP)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated, middlewarectx.RequireAdmin)
			r.Get("/dashboard/stats", dashboardstats.New(logger, d.Stats).ServeHTTP)
			r.Get("/users", userlist.New(logger, d.Users).ServeHTTP)
			r.Get("/users/{userId}", userread.New(logger, d.Users).ServeHTTP)
			r.Put("/users/{userId}", userupdate.New(logger, d.Users).ServeHTTP)
			r.Delete("/users/{userId}", userremove.New(logger, d.Users).ServeHTTP)
		})

		r.Route("/contact", func(r chi.Router) {
			r.With(middlewarectx.RateLimitMiddleware(logger, d.ContactLimiter, MsgContactLimited)).
				Post("/", create.New(logger, d.Contacts).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(authenticated, middlewarectx.RequireAdmin)
				r.Get("/", contactlist.New(logger, d.Contacts).ServeHTTP)
				r.Get("/export", export.New(logger, d.Contacts).ServeHTTP)
				r.Get("/export-by-date", exportbydate.New(logger, d.Contacts).ServeHTTP)
				r.Get("/summary", summary.New(logger, d.Contacts).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, http.StatusNotFound, MsgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, r, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
}
