package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/config"
	"github.com/stockroom/backend/internal/handlers"
	"github.com/stockroom/backend/internal/logger"
	"github.com/stockroom/backend/internal/middleware"
	"github.com/stockroom/backend/internal/services"
)

// @title           Inventory API
// @version         1.0.0
// @description     API for managing warehouse inventory

// @host      localhost:3000
// @BasePath  /
func main() {
	cfg := config.Load()

	log := logger.New(cfg.Environment)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	itemService, err := services.NewMongoItemService(ctx, cfg.MongoURI, cfg.MongoDB, cfg.StoreTimeout, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	routerCfg := handlers.RouterConfig{
		Logger:      log,
		Items:       itemService,
		RequireAuth: cfg.RequireAuth,
		CORSOrigins: cfg.CORSOrigins,
	}

	var closeSessions func() error
	if cfg.OAuthEnabled() {
		sessions, closer, err := newSessionStore(cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize session store", zap.Error(err))
		}
		closeSessions = closer

		routerCfg.Auth = handlers.NewAuthHandler(
			services.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL),
			sessions,
			middleware.NewSessionCookie(cfg.SessionSecret, cfg.IsProduction()),
			cfg.SessionTTL,
			log,
		)
		log.Info("GitHub login enabled", zap.String("callback", cfg.GitHubCallbackURL))
	} else if cfg.RequireAuth {
		log.Fatal("REQUIRE_AUTH is set but GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET are missing")
	}

	if !cfg.RequireAuth {
		log.Warn("Item routes are not behind the session gate; set REQUIRE_AUTH=true to protect them")
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Inventory API server starting",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if closeSessions != nil {
		if err := closeSessions(); err != nil {
			log.Error("Failed to close session store", zap.Error(err))
		}
	}
	if err := itemService.Close(shutdownCtx); err != nil {
		log.Error("Failed to disconnect MongoDB", zap.Error(err))
	}

	log.Info("Server exited")
}

// newSessionStore prefers Redis when REDIS_ADDR is set and falls back to
// the JSON file store otherwise.
func newSessionStore(cfg *config.Config, log *zap.Logger) (services.SessionStore, func() error, error) {
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := services.NewRedisSessionStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
		return store, store.Close, nil
	}

	store, err := services.NewFileSessionStore(cfg.SessionFile)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Using file session store", zap.String("path", cfg.SessionFile))
	return store, func() error { return nil }, nil
}
