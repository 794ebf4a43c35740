package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stephanofer/atlas/internal/bootstrap"
	"github.com/stephanofer/atlas/internal/config"
	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/observability/logging"
	"github.com/stephanofer/atlas/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("notifier", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("notifier")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		addr := ":" + cfg.NotifierMetricsPort
		logger.Info("notifier metrics listening", "port", cfg.NotifierMetricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("notifier subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDerived(ctx, func(handlerCtx context.Context, event domain.NotificationEvent) error {
		deliverCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.StartDelivery()
		workerMetrics.ObserveQueueLag(event.DerivedAt)
		start := time.Now()

		deliverErr := app.Notifications.HandleDerivedEvent(deliverCtx, event)
		status := "ok"
		if deliverErr != nil {
			status = "error"
		}
		workerMetrics.FinishDelivery(status, time.Since(start))
		return deliverErr
	})
	if err != nil {
		log.Fatalf("notifier subscribe error: %v", err)
	}
}
