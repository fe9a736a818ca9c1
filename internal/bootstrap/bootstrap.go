package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/mzheleznov/rxpilot/internal/config"
	"github.com/mzheleznov/rxpilot/internal/core/ports"
	"github.com/mzheleznov/rxpilot/internal/core/usecase"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/auth"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/cache/redis"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/llm/gemini"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/queue/nats"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/reference/rxnorm"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/reference/trials"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/repository/postgres"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/resilience"
	"github.com/mzheleznov/rxpilot/internal/observability/logging"
	"github.com/mzheleznov/rxpilot/internal/observability/metrics"
)

const referenceClientTimeout = 10 * time.Second

type App struct {
	Config   config.Config
	Sessions *auth.SessionManager
	Metrics  *metrics.HTTPServerMetrics

	Queue    ports.TrackingQueue
	Tracking ports.TrackingApplier

	AuthUC      *usecase.AuthUseCase
	SuggestUC   ports.SuggestionService
	ClassifyUC  ports.ClassificationService
	VerifyUC    ports.VerificationService
	TrialsUC    ports.TrialSummaryService
	InventoryUC *usecase.InventoryUseCase
	ShipmentUC  *usecase.ShipmentUseCase
	PatientUC   *usecase.PatientUseCase
	RecordUC    *usecase.RecordUseCase
	ReferenceUC *usecase.DrugReferenceUseCase

	closeFn func()
}

// New wires the whole application for a given service name. Both binaries
// call it; the worker simply uses a smaller slice of the returned App.
func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	medicines := postgres.NewMedicineRepository(db)
	shipments := postgres.NewShipmentRepository(db)
	patients := postgres.NewPatientRepository(db)
	records := postgres.NewRecordRepository(db)
	users := postgres.NewUserRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	sessions, err := auth.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	// The reference cache is best-effort: without redis every lookup simply
	// goes straight to the upstream API.
	var refCache ports.ReferenceCache
	var cacheClose func() error
	if cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Warn("redis unavailable, reference caching disabled", "error", err)
	} else {
		refCache = cache
		cacheClose = cache.Close
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	pipeline := httpMetrics.Pipeline(service)

	invoker := gemini.New(cfg.GeminiAPIURL, cfg.GeminiAPIKey, time.Duration(cfg.ModelTimeoutSeconds)*time.Second)

	textOrchestrator := usecase.NewOrchestrator(invoker, usecase.PipelineConfig{
		PrimaryModel:        cfg.PrimaryModel,
		FallbackModel:       cfg.FallbackModel,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, pipeline)
	visionOrchestrator := usecase.NewOrchestrator(invoker, usecase.PipelineConfig{
		PrimaryModel:        cfg.VisionModel,
		FallbackModel:       cfg.VisionFallbackModel,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, pipeline)

	rxnormClient := rxnorm.New(cfg.RxNormBaseURL, referenceClientTimeout, executor)
	trialsClient := trials.New(cfg.TrialsBaseURL, referenceClientTimeout, executor)

	shipmentUC := usecase.NewShipmentUseCase(shipments, medicines, queue, logger)

	app := &App{
		Config:   cfg,
		Sessions: sessions,
		Metrics:  httpMetrics,
		Queue:    queue,
		Tracking: shipmentUC,

		AuthUC:      usecase.NewAuthUseCase(users),
		SuggestUC:   usecase.NewSuggestMedicationUseCase(textOrchestrator, patients, records, logger, pipeline),
		ClassifyUC:  usecase.NewClassifyImageUseCase(visionOrchestrator),
		VerifyUC:    usecase.NewVerifyDrugAccessUseCase(textOrchestrator),
		TrialsUC:    usecase.NewSummarizeTrialUseCase(trialsClient, invoker, cfg.PrimaryModel),
		InventoryUC: usecase.NewInventoryUseCase(medicines, shipments),
		ShipmentUC:  shipmentUC,
		PatientUC:   usecase.NewPatientUseCase(patients),
		RecordUC:    usecase.NewRecordUseCase(patients, records),
		ReferenceUC: usecase.NewDrugReferenceUseCase(
			rxnormClient,
			refCache,
			time.Duration(cfg.CacheTTLMin)*time.Minute,
			logger,
		),

		closeFn: func() {
			queue.Close()
			if cacheClose != nil {
				_ = cacheClose()
			}
			_ = db.Close()
		},
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
