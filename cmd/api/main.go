package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scorewatch/scorewatch/internal/app"
	"github.com/scorewatch/scorewatch/internal/config"
	"github.com/scorewatch/scorewatch/internal/observability"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofServer, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	if cfg.CollectorEnabled && application.Collector != nil {
		go application.Collector.Run(ctx)
	}
	if application.ScheduleSync != nil {
		go runTicker(ctx, cfg.JobScheduleInterval, func(ctx context.Context) {
			if _, err := application.ScheduleSync.SyncSchedule(ctx, time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 7)); err != nil {
				logger.ErrorContext(ctx, "schedule sync failed", "error", err)
			}
		})
		go runTicker(ctx, cfg.JobLiveInterval, func(ctx context.Context) {
			if _, err := application.ScheduleSync.SyncLive(ctx); err != nil {
				logger.ErrorContext(ctx, "live sync failed", "error", err)
			}
		})
	}
	if cfg.OddsFeedEnabled {
		go runTicker(ctx, cfg.JobOddsInterval, func(ctx context.Context) {
			if _, err := application.OddsSync.SyncOdds(ctx); err != nil {
				logger.ErrorContext(ctx, "odds sync failed", "error", err)
			}
		})
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if pprofServer != nil {
		_ = observability.StopPprofServer(pprofServer, logger, 5*time.Second)
	}
	if stopPyroscope != nil {
		if err := stopPyroscope(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}
	if shutdownUptrace != nil {
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}

	logger.Info("http server stopped")
}

// runTicker fires immediately, then on every interval tick until ctx ends.
func runTicker(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
