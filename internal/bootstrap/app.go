// Package bootstrap wires stores, services and handlers from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripseats/api"
	"github.com/Domenick1991/tripseats/config"
	"github.com/Domenick1991/tripseats/internal/cache"
	"github.com/Domenick1991/tripseats/internal/kafka"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/Domenick1991/tripseats/internal/service/guide"
	"github.com/Domenick1991/tripseats/internal/service/layout"
	"github.com/Domenick1991/tripseats/internal/service/oplog"
	"github.com/Domenick1991/tripseats/internal/service/suggest"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stores struct {
	seats       repository.SeatRepository
	assignments repository.AssignmentRepository
	guides      repository.GuideRepository
	operations  repository.OperationRepository
	passengers  repository.PassengerSource
}

type App struct {
	Handlers Handlers
	// Memory is set when storage.driver is memory, so local runs can seed guides and passengers.
	Memory  *repository.MemoryStore
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}
	checks := make(map[string]api.Check)

	st, err := app.openStores(ctx, cfg, checks, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	logOpts := []oplog.Option{oplog.WithPageSize(cfg.Engine.OperationsPageSize)}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		app.closers = append(app.closers, func() { _ = producer.Close() })
		logOpts = append(logOpts, oplog.WithProducer(producer, cfg.Kafka.OperationsTopic))
		checks["kafka"] = producer.CheckConnection
	}
	opLog := oplog.New(st.operations, logger, logOpts...)

	var (
		engineOpts []assignment.AssignmentServiceOption
		layoutOpts []layout.LayoutServiceOption
		guideOpts  = []guide.GuideServiceOption{guide.WithReasonPrefix(cfg.Engine.BlockReasonPrefix)}
	)
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Engine.SnapshotTTL())
		app.closers = append(app.closers, func() { _ = redisCache.Close() })
		checks["redis"] = redisCache.Ping
		engineOpts = append(engineOpts, assignment.WithSnapshotCache(redisCache))
		layoutOpts = append(layoutOpts, layout.WithSnapshotCache(redisCache))
		guideOpts = append(guideOpts, guide.WithSnapshotCache(redisCache), guide.WithLocker(redisCache, cfg.Engine.GuideLockTTL()))
	}

	engine := assignment.NewAssignmentService(st.seats, st.assignments, opLog, logger, engineOpts...)
	layouts := layout.NewLayoutService(st.seats, st.assignments, engine, logger, layoutOpts...)
	guides := guide.NewGuideService(st.guides, st.seats, opLog, logger, guideOpts...)
	suggestions := suggest.NewSuggestService(layouts, st.passengers, logger)

	app.Handlers = Handlers{
		Maps:        api.NewMapHandler(layouts),
		Assignments: api.NewAssignmentHandler(engine),
		Transports:  api.NewTransportHandler(engine, suggestions, opLog),
		Guides:      api.NewGuideHandler(guides),
		Health:      api.NewHealthHandler(checks),
	}
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config, checks map[string]api.Check, logger *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := repository.NewMemoryStore()
		a.Memory = store
		return &stores{seats: store, assignments: store, guides: store, operations: store.Operations(), passengers: store}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	checks["postgres"] = pool.Ping

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			return nil, err
		}
	}
	return &stores{
		seats:       repository.NewSeatRepository(pool),
		assignments: repository.NewAssignmentRepository(pool),
		guides:      repository.NewGuideRepository(pool),
		operations:  repository.NewOperationRepository(pool),
		passengers:  repository.NewPassengerSource(pool),
	}, nil
}
