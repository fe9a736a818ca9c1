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

	httpadapter "github.com/mzheleznov/rxpilot/internal/adapters/http"
	"github.com/mzheleznov/rxpilot/internal/bootstrap"
	"github.com/mzheleznov/rxpilot/internal/config"
	"github.com/mzheleznov/rxpilot/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("rxpilot-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "rxpilot-api")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.RouterDeps{
		Auth:      app.AuthUC,
		Sessions:  app.Sessions,
		Suggest:   app.SuggestUC,
		Classify:  app.ClassifyUC,
		Verify:    app.VerifyUC,
		Trials:    app.TrialsUC,
		Inventory: app.InventoryUC,
		Shipments: app.ShipmentUC,
		Patients:  app.PatientUC,
		Records:   app.RecordUC,
		Reference: app.ReferenceUC,
		Metrics:   app.Metrics,

		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
