// @title           Todo API
// @version         1.0
// @description     Personal todo lists with JWT auth.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/birlikkoshan/todo-api/docs"
	"github.com/birlikkoshan/todo-api/internal/app"
	"github.com/birlikkoshan/todo-api/internal/config"
	"github.com/birlikkoshan/todo-api/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)
	log.Info("config loaded, connecting to DB and Redis", "env", cfg.App.Env, "version", cfg.App.Version)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-serveErr:
		log.Error("HTTP server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP shutdown", "error", err)
	}
	if err := application.Close(ctx); err != nil {
		log.Error("app close", "error", err)
	}
	log.Info("stopped")
}
