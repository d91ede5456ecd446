package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/hris-onboarding/internal/config"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
	"github.com/kirillkom/hris-onboarding/internal/core/usecase"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/fixtures"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/kv/localfs"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/kv/memory"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/kv/postgres"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/queue/nats"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/resilience"
	"github.com/kirillkom/hris-onboarding/internal/infrastructure/validation"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Profiles   ports.ProfileService
	Onboarding ports.OnboardingService
	Starter    ports.OnboardingStarter
	Sweep      *usecase.OverdueSweep

	// Events is nil when EVENTS_ENABLED is off.
	Events *nats.Queue

	closeFns []func()
}

// New wires the configured storage backend, event transport, and stores.
// observer, when set, receives circuit breaker transitions.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, observer resilience.StateObserver) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	executor := resilience.NewExecutor(
		resilienceConfig(cfg),
		resilience.WithLogger(logger),
		resilience.WithStateObserver(observer),
	)

	kv, err := app.openKeyValueStore(ctx, executor)
	if err != nil {
		app.Close()
		return nil, err
	}

	templates, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load onboarding templates: %w", err)
	}

	storeOpts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithStrictStagesByDefault(cfg.StrictStageTransitions),
	}
	if cfg.EventsEnabled {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init event queue: %w", err)
		}
		app.Events = queue
		app.closeFns = append(app.closeFns, queue.Close)
		storeOpts = append(storeOpts, usecase.WithEventPublisher(queue))
	}

	onboarding := usecase.NewOnboardingStore(kv, validation.New(), storeOpts...)
	app.Profiles = usecase.NewProfileStore(kv, storeOpts...)
	app.Onboarding = onboarding
	app.Starter = usecase.NewStartOnboardingUseCase(onboarding, templates, nil)
	app.Sweep = usecase.NewOverdueSweep(onboarding, logger, nil)

	logger.Info("bootstrap_ready",
		"store_backend", cfg.StoreBackend,
		"events_enabled", cfg.EventsEnabled,
		"strict_stage_transitions", cfg.StrictStageTransitions,
	)
	return app, nil
}

func (a *App) openKeyValueStore(ctx context.Context, executor *resilience.Executor) (ports.KeyValueStore, error) {
	switch a.Config.StoreBackend {
	case config.StoreBackendMemory:
		return memory.New(), nil
	case config.StoreBackendLocalFS, "":
		store, err := localfs.New(a.Config.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init local state storage: %w", err)
		}
		return store, nil
	case config.StoreBackendPostgres:
		db, err := postgres.OpenDB(a.Config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })

		store := postgres.New(db, executor)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.Config.StoreBackend)
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceBreakerOpenTimeoutMS > 0 {
		out.BreakerOpenTimeout = time.Duration(cfg.ResilienceBreakerOpenTimeoutMS) * time.Millisecond
	}
	return out
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}
