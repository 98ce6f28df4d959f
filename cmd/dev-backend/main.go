// Package main запускает dev-бэкенд видеоплатформы: локальный HTTP-сервер
// с контрактом продакшен-API для разработки и тестирования клиента.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/video-subscription-client/internal/config"
	"github.com/magabrotheeeer/video-subscription-client/internal/devbackend"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting dev-backend", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := devbackend.New(cfg, logger)
	if err := srv.SeedAdmin("admin@example.com", "admin123"); err != nil {
		logger.Error("failed to seed admin account", slog.Any("err", err))
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("dev-backend stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("dev-backend stopped gracefully")
}
