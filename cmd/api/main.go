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

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/hris-onboarding/internal/adapters/http"
	"github.com/kirillkom/hris-onboarding/internal/bootstrap"
	"github.com/kirillkom/hris-onboarding/internal/config"
	"github.com/kirillkom/hris-onboarding/internal/observability/logging"
	"github.com/kirillkom/hris-onboarding/internal/observability/metrics"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger("hris-api", cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("dotenv_not_loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("hris-api")
	app, err := bootstrap.New(ctx, cfg, logger, httpMetrics.SetBreakerState)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		cfg,
		app.Profiles,
		app.Onboarding,
		app.Starter,
		httpadapter.WithMetrics(httpMetrics),
		httpadapter.WithLogger(logger),
	).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", "error", err)
	}
}
