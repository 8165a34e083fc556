package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cantina/internal/adapter/http"
	"github.com/iho/cantina/internal/adapter/http/handler"
	"github.com/iho/cantina/internal/adapter/http/middleware"
	"github.com/iho/cantina/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cantina/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cantina/internal/adapter/repository/redis"
	"github.com/iho/cantina/internal/infrastructure/auth"
	"github.com/iho/cantina/internal/infrastructure/config"
	"github.com/iho/cantina/internal/infrastructure/eventpublisher"
	"github.com/iho/cantina/internal/infrastructure/logger"
	"github.com/iho/cantina/internal/infrastructure/metrics"
	"github.com/iho/cantina/internal/infrastructure/postgres"
	"github.com/iho/cantina/internal/infrastructure/redis"
	"github.com/iho/cantina/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// application is the wired service: HTTP server plus background workers.
type application struct {
	cfg         *config.Config
	logger      zerolog.Logger
	server      *http.Server
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

type storage struct {
	txManager   usecase.TransactionManager
	accountRepo usecase.AccountRepository
	entryRepo   usecase.EntryRepository
	outboxRepo  usecase.OutboxRepository
	ledgerRepo  usecase.LedgerRepository
	health      handler.HealthCheck
}

func build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	store, err := app.openStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	negativeLimit, err := cfg.NegativeLimit()
	if err != nil {
		app.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewWithRegisterer(registry)

	healthChecks := []handler.HealthCheck{store.health}

	var (
		idempotency usecase.IdempotencyStore
		cache       usecase.Cache
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.closers = append(app.closers, func() { closeRedis(client) })
		logger.Info().Msg("connected to redis")

		idempotency = redisRepo.NewIdempotencyStore(client)
		cache = redisRepo.NewCache(client)
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Pinger: redis.Pinger{Client: client}})
	} else {
		logger.Warn().Msg("REDIS_URL not set, idempotent replay and statistics cache disabled")
	}

	idGen := postgresRepo.NewULIDGenerator()
	retrier := usecase.NewRetrier(usecase.RetryConfig{
		MaxAttempts:     cfg.LedgerMaxAttempts,
		AttemptTimeout:  cfg.LedgerAttemptTimeout,
		InitialInterval: usecase.DefaultRetryConfig().InitialInterval,
		MaxInterval:     usecase.DefaultRetryConfig().MaxInterval,
	}, logger, recorder)

	accountUC := usecase.NewAccountUseCase(store.txManager, store.accountRepo, store.outboxRepo, idGen, negativeLimit)
	ledgerUC := usecase.NewLedgerUseCase(store.txManager, store.accountRepo, store.entryRepo, store.outboxRepo, idGen, retrier, logger,
		usecase.WithRecorder(recorder))
	entryUC := usecase.NewEntryUseCase(store.accountRepo, store.entryRepo)
	statisticsUC := usecase.NewStatisticsUseCase(store.accountRepo, cache, cfg.StatisticsCacheTTL, logger)
	cleanupUC := usecase.NewCleanupUseCase(store.txManager, store.entryRepo, logger)
	reconciliationUC := usecase.NewReconciliationUseCase(store.accountRepo, store.ledgerRepo, logger)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		EntryHandler:          handler.NewEntryHandler(entryUC),
		StatisticsHandler:     handler.NewStatisticsHandler(statisticsUC),
		MaintenanceHandler:    handler.NewMaintenanceHandler(cleanupUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(healthChecks...),
		IdempotencyStore:      idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		MetricsHandler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:                logger,
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	if cfg.RateLimitRPS > 0 {
		app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = app.rateLimiter
	}

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	if cfg.KafkaEnabled() {
		kafka := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		app.closers = append(app.closers, func() {
			if err := kafka.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close kafka writer")
			}
		})
		publisher = kafka
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")
	}
	app.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outboxRepo,
		Publisher:  publisher,
		Recorder:   recorder,
		Logger:     logger,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return app, nil
}

func (a *application) openStorage(ctx context.Context) (*storage, error) {
	switch a.cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		a.logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			txManager:   memory.NewTxManager(store),
			accountRepo: memory.NewAccountRepository(store),
			entryRepo:   memory.NewEntryRepository(store),
			outboxRepo:  memory.NewOutboxRepository(store),
			ledgerRepo:  memory.NewLedgerRepository(store),
			health:      handler.HealthCheck{Name: "store", Pinger: store},
		}, nil

	case config.StoragePostgres:
		if err := postgres.RunMigrations(a.cfg.DatabaseURL, a.cfg.MigrationsPath, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    a.cfg.DatabaseURL,
			MaxConns:       a.cfg.DatabaseMaxConns,
			MinConns:       a.cfg.DatabaseMinConns,
			ConnectTimeout: a.cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.logger.Info().Msg("connected to postgres")

		return postgresStorage(pool), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", a.cfg.StorageDriver)
}

func postgresStorage(pool *pgxpool.Pool) *storage {
	return &storage{
		txManager:   postgresRepo.NewTxManager(pool),
		accountRepo: postgresRepo.NewAccountRepository(pool),
		entryRepo:   postgresRepo.NewEntryRepository(pool),
		outboxRepo:  postgresRepo.NewOutboxRepository(pool),
		ledgerRepo:  postgresRepo.NewLedgerRepository(pool),
		health:      handler.HealthCheck{Name: "postgres", Pinger: pool},
	}
}

// Run serves HTTP and runs the background workers until ctx is cancelled,
// then shuts the server down gracefully.
func (a *application) Run(ctx context.Context) error {
	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() {
		if err := a.publisher.Start(workers); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if a.rateLimiter != nil {
		go a.rateLimiter.Run(workers, rateLimiterIdle)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.server.Addr).Msg("starting server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func closeRedis(client *goredis.Client) {
	if err := client.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close redis client")
	}
}
