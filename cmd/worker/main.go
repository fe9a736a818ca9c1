package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mzheleznov/rxpilot/internal/bootstrap"
	"github.com/mzheleznov/rxpilot/internal/config"
	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/observability/logging"
	"github.com/mzheleznov/rxpilot/internal/observability/metrics"
)

const serviceName = "rxpilot-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeTrackingEvents(ctx, func(handlerCtx context.Context, event domain.TrackingEvent) error {
		applyCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.StartEvent()
		start := time.Now()
		if !event.RecordedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(event.RecordedAt))
		}

		applyErr := app.Tracking.ApplyTrackingEvent(applyCtx, event)
		workerMetrics.FinishEvent(serviceName, time.Since(start), applyErr)
		return applyErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
