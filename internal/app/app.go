package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/config"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/i18n"
	"github.com/simp-lee/amcham/internal/metrics"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/session"
	"github.com/simp-lee/amcham/internal/storage"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine   *gin.Engine
	store    storage.Store
	logger   *logger.Logger
	cfg      *config.Config
	language *i18n.Store
	sessions *session.Manager
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// openStore connects the client-state store selected by cfg.Driver.
var openStore = func(ctx context.Context, cfg *config.StorageConfig, log *slog.Logger) (storage.Store, error) {
	if cfg.Driver == "redis" {
		rdb, err := config.SetupRedis(ctx, &cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
	}

	db, err := config.SetupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewGormStore(db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the client-state store, the Language Store, the backend
// client and session, the directory modules, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false
	ctx := context.Background()

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Client-state store.
	store, err := openStore(ctx, &cfg.Storage, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := store.Close(); err != nil {
			slog.Error("storage close error", slog.Any("error", err))
		}
	}()

	// 3. Language Store, restored from the persisted choice.
	language, err := i18n.NewStore(ctx, store, domain.Locale(cfg.Locale.Default), config.Component(log.Logger, "i18n"))
	if err != nil {
		return nil, fmt.Errorf("setup language store: %w", err)
	}

	// 4. Backend client and session.
	collector := metrics.New()
	backend, err := client.New(client.Options{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.BackendTimeout(),
		PublicPaths: cfg.Backend.PublicPaths,
		Logger:      config.Component(log.Logger, "client"),
		Metrics:     collector,
	})
	if err != nil {
		return nil, fmt.Errorf("setup backend client: %w", err)
	}
	sessions := session.NewManager(store, client.NewAuthAPI(backend), config.Component(log.Logger, "session"), collector)
	backend.SetTokenSource(sessions)
	backend.OnAuthFailure(sessions.HandleAuthFailure)

	// 5. Modules.
	modules := buildModules(client.NewDirectory(backend), sessions, language, log.Logger, collector)

	// 6. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger, "/health", "/metrics"),
		middleware.Metrics(collector),
		middleware.CORSWithConfig(resolveCORSConfig(cfg)),
	)
	if cfg.Server.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RPS:   cfg.Server.RateLimit.RPS,
			Burst: cfg.Server.RateLimit.Burst,
		}))
	}
	engine.Use(
		middleware.Timeout(cfg.RequestTimeout()),
		middleware.Locale(language),
	)

	// 7. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:  modules,
		Store:    store,
		Sessions: sessions,
		Metrics:  collector,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:   engine,
		store:    store,
		logger:   log,
		cfg:      cfg,
		language: language,
		sessions: sessions,
	}, nil
}

// Handler returns the console's HTTP handler.
func (a *App) Handler() http.Handler { return a.engine }

// resolveCORSConfig builds the CORS settings. In release mode, when no
// allowlist is configured, cross-origin requests are denied.
func resolveCORSConfig(cfg *config.Config) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	c := cfg.Server.CORS

	if len(c.AllowMethods) > 0 {
		corsConfig.AllowMethods = c.AllowMethods
	}
	if len(c.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = c.AllowHeaders
	}
	corsConfig.AllowCredentials = c.AllowCredentials
	corsConfig.MaxAge = cfg.CORSMaxAge()

	if len(c.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = c.AllowOrigins
		return corsConfig
	}

	if cfg.Server.Mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// client-state store.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr), slog.String("locale", string(a.currentLocale())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Error("storage close error", slog.Any("error", err))
		} else {
			log.Info("storage closed")
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

func (a *App) currentLocale() domain.Locale {
	if a.language == nil {
		return domain.DefaultLocale
	}
	return a.language.Current()
}
