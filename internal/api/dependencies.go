package api

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"
	gormlib "gorm.io/gorm"

	"skyline/flightsync/internal/common"
	"skyline/flightsync/internal/config"
	"skyline/flightsync/internal/db"
	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/jobs"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/metrics"
	"skyline/flightsync/internal/providers"
	"skyline/flightsync/internal/services"
)

// providerRate paces every outbound provider call, shared by the monthly job and the
// ad-hoc endpoint
const providerRate = rate.Limit(1)

type Repositories struct {
	Schedules repositories.ScheduleStore
	Keys      *repositories.KeysRepo
}

type Services struct {
	Cache     common.CacheInterface
	Collector *services.ScheduleCollector
	Query     *services.ScheduleQueryService
}

type Dependencies struct {
	Repo          *Repositories
	Services      *Services
	CollectionJob *jobs.MonthlyCollectionJob
	Metrics       *metrics.MetricsRegistry
	HealthChecks  map[string]Pinger

	SupportedAirports []string

	closers []func() error
}

// InitDependencies connects the configured store and cache and builds the service graph
func InitDependencies(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*Dependencies, error) {
	deps := &Dependencies{
		Metrics:           metrics.NewMetricsRegistry(reg),
		HealthChecks:      make(map[string]Pinger),
		SupportedAirports: cfg.SupportedAirports,
	}

	store, err := deps.openStore(ctx, cfg)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.HealthChecks["store"] = store

	var cache common.CacheInterface
	if cfg.RedisEnabled {
		redisCache := common.NewRedisCacheService(common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword))
		deps.closers = append(deps.closers, redisCache.Close)
		deps.HealthChecks["redis"] = redisCache
		cache = redisCache
	} else {
		cache = common.NewCacheService(int(cfg.CacheTTL.Seconds()), 600)
	}

	// instrumentation sits under the cache so only real store reads are measured
	schedules := repositories.NewCachedScheduleStore(
		repositories.NewInstrumentedScheduleStore(store, deps.Metrics),
		cache,
		cfg.CacheTTL,
		deps.Metrics,
	)

	repo := &Repositories{Schedules: schedules}
	if cfg.APIKeysEnabled {
		keysDB, err := db.InitPostgres(cfg.PostgresDSN())
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("failed to connect api key database: %w", err)
		}
		deps.closers = append(deps.closers, keysDB.Close)
		deps.HealthChecks["api_keys"] = sqlxPinger{keysDB}
		repo.Keys = repositories.NewApiKeysRepo(keysDB)
	}
	deps.Repo = repo

	provider := providers.NewFlightDataProvider(
		cfg.ProviderBaseURL,
		cfg.ProviderAPIKey,
		cfg.ProviderAPIHost,
		cfg.ProviderTimeout,
		rate.NewLimiter(providerRate, 1),
	)
	collector := services.NewScheduleCollector(provider, schedules, deps.Metrics)

	deps.Services = &Services{
		Cache:     cache,
		Collector: collector,
		Query:     services.NewScheduleQueryService(schedules),
	}
	deps.CollectionJob = jobs.NewMonthlyCollectionJob(collector, jobs.SleepDelay, cfg.SupportedAirports, deps.Metrics)

	return deps, nil
}

func (d *Dependencies) openStore(ctx context.Context, cfg *config.Config) (repositories.ScheduleStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		d.closers = append(d.closers, func() error { return client.Disconnect(context.Background()) })
		store, err := repositories.NewMongoScheduleStore(ctx, mongoDatabase(client, cfg.MongoDB))
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreBackendSQLite:
		orm, err := db.InitSQLiteORM(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return d.migratedGormStore(orm)

	default:
		orm, err := db.InitPostgresORM(cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		return d.migratedGormStore(orm)
	}
}

func (d *Dependencies) migratedGormStore(orm *gormlib.DB) (repositories.ScheduleStore, error) {
	if sqlDB, err := orm.DB(); err == nil {
		d.closers = append(d.closers, sqlDB.Close)
	}

	store := repositories.NewGormScheduleStore(orm)
	if err := store.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate schedule tables: %w", err)
	}
	return store, nil
}

// Close releases connections in reverse order of creation
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logging.Warn("Failed to close dependency", "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	d.closers = nil
	return firstErr
}

func mongoDatabase(client *mongo.Client, name string) *mongo.Database {
	return client.Database(name)
}

type sqlxPinger struct {
	db *sqlx.DB
}

func (p sqlxPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
