package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/app"
	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/config"
	"github.com/hackgods/saude-connect/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("completion worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
		zap.String("store_backend", cfg.StoreBackend),
	)
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("memory backend is private to this process, the worker will not see api-server bookings")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(rootCtx, 10*time.Second)
	a, err := app.New(connectCtx, cfg, logger, nil)
	cancelConnect()
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	runOnce(rootCtx, a.Bookings, logger)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping completion worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, a.Bookings, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := svc.CompletePastBookings(runCtx)
	if err != nil {
		logger.Error("completion run failed", zap.Error(err))
		return
	}
	logger.Info("completion run finished", zap.Int("completed", n), zap.Duration("took", time.Since(start)))
}
