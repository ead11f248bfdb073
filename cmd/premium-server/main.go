// cmd/premium-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"premium-service/internal/api"
	"premium-service/internal/common/camunda"
	"premium-service/internal/common/config"
	"premium-service/internal/common/logger"
	"premium-service/internal/common/observability"
	"premium-service/internal/plans"
	"premium-service/internal/projection"

	pp "premium-service/internal/workers/pricing/project-premiums"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		bootLog.Fatal("logger init failed", zap.Error(err))
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting premium service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("metrics exporter unavailable, continuing with tracing only", zap.Error(err))
	}

	store, err := plans.NewFileStore(cfg.Plans, log)
	if err != nil {
		zapLog.Fatal("plan store init failed", zap.Error(err))
	}
	zapLog.Info("Plan store ready", zap.String("dataDir", store.Root()))

	projector := projection.NewProjector(store, obs.Tracer(), log)

	// --- Optional Zeebe worker ---
	var zeebe *camunda.Client
	var serverOpts []api.Option
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(context.Background(), camunda.ConfigFrom(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}

		wcfg := config.GetWorkerConfig(cfg, pp.TaskType)
		handler := pp.NewHandler(pp.ConfigFromWorker(wcfg), projector, log)
		zeebe.StartWorker(pp.TaskType, wcfg, handler.Handle)

		serverOpts = append(serverOpts, api.WithReadinessCheck(func() error {
			if err := store.Ready(); err != nil {
				return err
			}
			return zeebe.HealthCheck(context.Background())
		}))
	}

	// --- HTTP server ---
	server := api.NewServer(cfg, projector, obs, log, serverOpts...)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Premium service stopped gracefully")
}
