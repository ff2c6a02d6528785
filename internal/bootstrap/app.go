package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/config"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/emission"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/eventlog"
	"github.com/service-lgtm/pw-next-sub000/internal/inventory"
	"github.com/service-lgtm/pw-next-sub000/internal/mining"
	"github.com/service-lgtm/pw-next-sub000/internal/pricing"
	"github.com/service-lgtm/pw-next-sub000/internal/scheduler"
	"github.com/service-lgtm/pw-next-sub000/internal/server"
	"github.com/service-lgtm/pw-next-sub000/internal/sse"
	"github.com/service-lgtm/pw-next-sub000/internal/worker"
)

// App is the fully wired mining service
type App struct {
	Config    *config.Config
	Clock     clock.Clock
	DB        *pgxpool.Pool
	Stores    *Stores
	Bus       event.Bus
	Publisher *event.ResilientPublisher
	Pricing   *pricing.Table
	Caps      *emission.Registry
	Lands     *inventory.CachedDirectory
	Mining    *mining.Registry
	Preflight *mining.PreflightChecker
	EventLog  eventlog.Service
	Stream    *sse.Hub
	Rollover  *worker.EmissionRolloverWorker
	Workers   *worker.Pool
	Scheduler *scheduler.Scheduler
	Server    *server.Server
}

// NewApp wires every component. db is required for the postgres driver and ignored otherwise.
func NewApp(cfg *config.Config, db *pgxpool.Pool, clk clock.Clock) (*App, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}

	stores, err := InitializeStores(cfg, db, clk)
	if err != nil {
		return nil, err
	}

	bus, publisher, err := InitializeEventSystem(cfg)
	if err != nil {
		return nil, err
	}

	eventLog := eventlog.NewService(stores.EventLog)
	if err := RegisterEventHandlers(bus, eventLog); err != nil {
		return nil, err
	}

	stream := sse.NewHub()
	sse.NewSubscriber(stream, bus).Subscribe()

	table, err := NewPricingTable(cfg.Rates)
	if err != nil {
		return nil, err
	}

	counterOpts := []emission.CounterOption{emission.WithObserver(mining.NewEmissionEvents(publisher))}
	if stores.Emission != nil {
		counterOpts = append(counterOpts, emission.WithStore(stores.Emission))
	}
	caps := emission.NewRegistry(
		emission.NewCounter(domain.ResourceYLD, cfg.YLDDailyLimit, cfg.EmissionLocation(), clk, counterOpts...),
	)

	lands := inventory.NewCachedDirectory(stores.Lands, cfg.LandCacheSize, cfg.LandCacheTTL)

	miningCfg := mining.Config{
		FoodPerToolHour:   cfg.FoodPerToolHour,
		DurabilityPerHour: cfg.DurabilityPerHour,
		LowFoodHours:      cfg.LowFoodHours,
	}
	deps := mining.Deps{
		Lands:     lands,
		Tools:     stores.Tools,
		Ledger:    stores.Ledger,
		Pricing:   table,
		Caps:      caps,
		Publisher: publisher,
		Clock:     clk,
	}
	if stores.Sessions != nil {
		deps.Store = stores.Sessions
	}
	registry := mining.NewRegistry(deps, miningCfg)
	preflight := mining.NewPreflightChecker(lands, stores.Tools, stores.Ledger, caps, miningCfg)

	rollover := worker.NewEmissionRolloverWorker(caps, clk)
	workers := worker.NewPool(WorkerPoolSize, WorkerQueueSize)

	serverDeps := server.Deps{
		Sessions:  registry,
		Preflight: preflight,
		Tools:     stores.Tools,
		Emission:  caps,
		Rates:     table,
		Limits:    caps,
		Rollover:  rollover,
		Cache:     lands,
		History:   eventLog,
		Stream:    stream,
	}
	if db != nil {
		serverDeps.Pool = db
	}
	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, serverDeps)

	return &App{
		Config:    cfg,
		Clock:     clk,
		DB:        db,
		Stores:    stores,
		Bus:       bus,
		Publisher: publisher,
		Pricing:   table,
		Caps:      caps,
		Lands:     lands,
		Mining:    registry,
		Preflight: preflight,
		EventLog:  eventLog,
		Stream:    stream,
		Rollover:  rollover,
		Workers:   workers,
		Scheduler: scheduler.New(workers),
		Server:    srv,
	}, nil
}

// NewPricingTable converts configured rates keyed by resource name
func NewPricingTable(rates map[string]decimal.Decimal) (*pricing.Table, error) {
	typed := make(map[domain.ResourceType]decimal.Decimal, len(rates))
	for name, rate := range rates {
		resource := domain.ResourceType(name)
		if !resource.IsValid() {
			return nil, fmt.Errorf("%w: unknown resource %q in rates", domain.ErrInvalidInput, name)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("%w: negative rate for %s", domain.ErrInvalidInput, name)
		}
		typed[resource] = rate
	}
	return pricing.NewTable(typed), nil
}

// StartBackground restores open sessions and starts the stream hub and the tick, cleanup and rollover workers.
// The HTTP server is started separately by the caller.
func (a *App) StartBackground(ctx context.Context) error {
	restored, err := a.Mining.Restore(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRestoreSession, err)
	}
	slog.Info(LogMsgSessionsRestored, "count", restored)

	a.Stream.Start()
	a.Workers.Start()
	a.Scheduler.Schedule(a.Config.TickInterval, worker.NewTickJob(a.Mining, a.Caps))
	a.Scheduler.Schedule(eventlog.CleanupInterval, eventlog.NewCleanupJob(a.EventLog, a.Config.EventRetentionDays))
	a.Rollover.Start()

	slog.Info(LogMsgBackgroundStarted,
		"tick_interval", a.Config.TickInterval,
		"cleanup_interval", eventlog.CleanupInterval)
	return nil
}

// Shutdown stops every component in dependency order
func (a *App) Shutdown(ctx context.Context) {
	GracefulShutdown(ctx, ShutdownComponents{
		Stream:             a.Stream,
		Server:             a.Server,
		Scheduler:          a.Scheduler,
		WorkerPool:         a.Workers,
		RolloverWorker:     a.Rollover,
		ResilientPublisher: a.Publisher,
		DB:                 a.DB,
	})
}
