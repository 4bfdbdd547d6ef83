package documind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/documind-api/internal/cache"
	"github.com/magabrotheeeer/documind-api/internal/config"
	"github.com/magabrotheeeer/documind-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/documind-api/internal/lib/jwt"
	"github.com/magabrotheeeer/documind-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/documind-api/internal/lib/sl"
	"github.com/magabrotheeeer/documind-api/internal/migrations"
	authservice "github.com/magabrotheeeer/documind-api/internal/services/auth"
	contactservice "github.com/magabrotheeeer/documind-api/internal/services/contact"
	statsservice "github.com/magabrotheeeer/documind-api/internal/services/stats"
	userservice "github.com/magabrotheeeer/documind-api/internal/services/users"
	"github.com/magabrotheeeer/documind-api/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "documind.New"

	db, err := storage.New(ctx, storage.Options{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.Client, cfg.Mongo.Database); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("connected to MongoDB", slog.String("database", cfg.Mongo.Database))

	app := &App{logger: logger, db: db}

	var (
		statsCache     statsservice.Cache = cache.Noop{}
		apiLimiter     middlewarectx.Limiter
		contactLimiter middlewarectx.Limiter
	)
	if cfg.Redis.Address != "" {
		app.cache, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			logger.Error("redis unavailable, using in-process cache and limits", sl.Err(err))
		}
	}
	if app.cache != nil {
		statsCache = app.cache
		apiLimiter = middlewarectx.NewWindowLimiter(app.cache, "api", cfg.Limits.APIRequests, cfg.Limits.APIWindow)
		contactLimiter = middlewarectx.NewWindowLimiter(app.cache, "contact", cfg.Limits.ContactRequests, cfg.Limits.ContactWindow)
	} else {
		apiLimiter = middlewarectx.NewMemoryLimiter(cfg.Limits.APIRequests, cfg.Limits.APIWindow)
		contactLimiter = middlewarectx.NewMemoryLimiter(cfg.Limits.ContactRequests, cfg.Limits.ContactWindow)
	}

	var publisher contactservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		if err = app.connectBroker(cfg.RabbitMQ); err != nil {
			logger.Error("rabbitmq unavailable, contact events disabled", sl.Err(err))
		} else {
			publisher = app.publisher
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.Secret, cfg.JWTToken.TokenTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         logger,
		Auth:           authservice.NewService(db, jwtMaker, cfg.Auth.AllowRoleOnRegister),
		Users:          userservice.NewService(db),
		Contacts:       contactservice.NewService(logger, db, publisher),
		Stats:          statsservice.NewService(logger, db, statsCache, cfg.Cache.StatsTTL),
		DB:             db,
		APILimiter:     apiLimiter,
		ContactLimiter: contactLimiter,
		Registry:       registry,
		FrontendURL:    cfg.FrontendURL,
		Development:    cfg.Env == config.EnvLocal,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

func (a *App) connectBroker(cfg config.RabbitMQ) error {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.MaxRetries, cfg.RetryDelay)
	if err != nil {
		return err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return err
	}
	a.amqpConn = conn
	a.publisher = rabbitmq.NewPublisher(ch)
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return runErr
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(closeCtx); err != nil {
		a.logger.Error("failed to close MongoDB", sl.Err(err))
	}
}
