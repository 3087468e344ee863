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

	"github.com/joho/godotenv"

	httpadapter "github.com/g-g-pletnev/docan/internal/adapters/http"
	"github.com/g-g-pletnev/docan/internal/bootstrap"
	"github.com/g-g-pletnev/docan/internal/config"
	"github.com/g-g-pletnev/docan/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewLogger("docan-api", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Janitor.Start(ctx); err != nil {
		logger.Error("retention janitor failed to start", "error", err)
		os.Exit(1)
	}

	router, err := httpadapter.NewRouter(
		app.IntakeUC,
		app.CatalogUC,
		app.Models,
		app.Progress,
		app.HTTPMetrics,
		app.IntakeMetrics,
		httpadapter.RouterOptions{
			Service:      "docan-api",
			DefaultModel: cfg.DefaultModel,
			WebDir:       app.WebDir,
		},
	)
	if err != nil {
		logger.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	// No read or write deadlines: an intake request stays open for the
	// whole pipeline run and the progress socket is long-lived.
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
}
