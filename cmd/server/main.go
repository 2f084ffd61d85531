package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/pin-vault/config"
	"github.com/ErlanBelekov/pin-vault/internal/domain"
	"github.com/ErlanBelekov/pin-vault/internal/health"
	"github.com/ErlanBelekov/pin-vault/internal/infrastructure"
	ctxlog "github.com/ErlanBelekov/pin-vault/internal/log"
	"github.com/ErlanBelekov/pin-vault/internal/metrics"
	"github.com/ErlanBelekov/pin-vault/internal/store"
	httptransport "github.com/ErlanBelekov/pin-vault/internal/transport/http"
	"github.com/ErlanBelekov/pin-vault/internal/transport/http/handler"
	"github.com/ErlanBelekov/pin-vault/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	repo, closeRepo, err := infrastructure.OpenSnapshotRepository(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}
	defer closeRepo()

	metrics.Register(prometheus.DefaultRegisterer)

	vault, err := store.New(ctx, repo, domain.SeedAdmin{
		Username: cfg.SeedAdminUsername,
		Pin:      cfg.SeedAdminPin,
	}, logger)
	if err != nil {
		stop()
		closeRepo()
		log.Fatalf("store: %v", err)
	}

	authUsecase := usecase.NewAuthUsecase(vault)
	authHandler := handler.NewAuthHandler(authUsecase, logger)
	bookmarkHandler := handler.NewBookmarkHandler(usecase.NewBookmarkUsecase(vault), logger)
	adminUsecase := usecase.NewAdminUsecase(vault)
	adminHandler := handler.NewAdminHandler(adminUsecase, logger)

	checker := health.NewChecker(repo, cfg.StorageBackend, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authUsecase, adminUsecase, authHandler, bookmarkHandler, adminHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
