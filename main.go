// @title           Listo Task Manager API
// @version         1.0
// @description     Register, log in, and manage your own tasks with a bearer token.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listo/config"
	"listo/db"
	"listo/handlers"
	"listo/logger"
	"listo/services"
	"listo/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logrusLogger := logger.New("listo", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logrusLogger.WithError(err).Fatal("failed to open store")
	}
	defer store.Close()
	logrusLogger.WithField("driver", cfg.DBDriver).Info("store ready")

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logrusLogger.WithError(err).Fatal("failed to create token service")
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           services.NewAuthService(store, tokens),
		Tasks:          services.NewTaskService(store),
		Logger:         logrusLogger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrusLogger.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrusLogger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrusLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrusLogger.WithError(err).Error("graceful shutdown failed")
	}
}
