package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"reqcheck/internal/config"
	"reqcheck/internal/errors"
	"reqcheck/internal/infrastructure"
	"reqcheck/internal/loader"
	customMiddleware "reqcheck/internal/middleware"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	"reqcheck/internal/session"
	handlers "reqcheck/internal/transport/http"
)

// VERSION is the service version reported by the health endpoints.
const VERSION = "v1.0.0"

// Application is the main dependency container.
type Application struct {
	Config  *config.Config
	Router  *chi.Mux
	Server  *http.Server
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics

	Sessions         *session.Store
	ReconcileService *services.ReconcileService
	HealthService    *services.HealthService

	sweeperCancel context.CancelFunc
}

// NewApplication wires configuration, logging, services and routes.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", VERSION),
		slog.Int("port", cfg.Server.Port),
		slog.Bool("debug", cfg.Debug))

	if cfg.Security.AccessSecret == "" {
		logger.Warn("no access secret configured, session creation is open")
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() {
	store := session.NewStore(session.Config{
		TTL:           a.Config.Session.TTL,
		SweepInterval: a.Config.Session.SweepInterval,
		MaxSessions:   a.Config.Session.MaxSessions,
	}, a.Logger)
	store.OnCountChange(func(count int) {
		a.Metrics.ActiveSessions.Set(float64(count))
	})
	a.Sessions = store

	ld := loader.New(a.Logger, a.Config.Upload.MaxRows)
	pipeline := reconcile.NewPipeline(a.Logger)

	a.ReconcileService = services.NewReconcileService(ld, pipeline, store, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(VERSION)
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Debug)
	errorMiddleware := errors.NewErrorMiddleware(errorHandler, a.Logger)

	r.Use(customMiddleware.RequestID)
	r.Use(errorMiddleware.Handler)

	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		r.Use(customMiddleware.CORS(a.Config.Security.AllowedOrigins))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/healthz", healthHandler.Routes())

		sessionHandler := handlers.NewSessionHandler(a.Sessions, a.Config.Security.AccessSecret, a.Logger, errorHandler)
		r.Mount("/session", sessionHandler.Routes())

		reconcileHandler := handlers.NewReconcileHandler(
			a.ReconcileService, a.Logger, errorHandler,
			a.Config.Upload.MaxFileSize, a.Config.Debug)

		// Everything below requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.SessionAuth(a.Sessions, a.Logger))
			r.Mount("/reconcile", reconcileHandler.Routes())
			r.Mount("/export", reconcileHandler.ExportRoutes())
		})
	})

	// Outside the JSON content-type group.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run starts the server and blocks until shutdown.
func (a *Application) Run() error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	a.sweeperCancel = cancel
	a.Sessions.StartSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		cancel()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown stops the server gracefully.
func (a *Application) Shutdown() error {
	if a.sweeperCancel != nil {
		a.sweeperCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down http server",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	return nil
}
