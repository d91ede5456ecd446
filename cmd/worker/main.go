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

	"github.com/kirillkom/hris-onboarding/internal/adapters/worker"
	"github.com/kirillkom/hris-onboarding/internal/bootstrap"
	"github.com/kirillkom/hris-onboarding/internal/config"
	"github.com/kirillkom/hris-onboarding/internal/observability/logging"
	"github.com/kirillkom/hris-onboarding/internal/observability/metrics"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger("hris-worker", cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("dotenv_not_loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("hris-worker")
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	runner := worker.NewRunner(app.Sweep, workerMetrics, logger)
	if _, err := runner.Sweep(ctx); err != nil {
		logger.Warn("initial_overdue_sweep_failed", "error", err)
	}
	if err := runner.Start(ctx, cfg.OverdueSweepSchedule); err != nil {
		logger.Error("sweep_schedule_invalid", "error", err)
		os.Exit(1)
	}
	defer runner.Stop()

	if app.Events == nil {
		logger.Info("worker_events_disabled")
		<-ctx.Done()
		return
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	if err := app.Events.Subscribe(ctx, runner.HandleEvent); err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}
}
