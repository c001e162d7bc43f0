package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/debtledger/internal/adapter/http"
	"github.com/iho/debtledger/internal/adapter/http/handler"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/debtledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/debtledger/internal/adapter/repository/redis"
	"github.com/iho/debtledger/internal/infrastructure/auth"
	"github.com/iho/debtledger/internal/infrastructure/config"
	"github.com/iho/debtledger/internal/infrastructure/eventpublisher"
	"github.com/iho/debtledger/internal/infrastructure/logger"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
	"github.com/iho/debtledger/internal/infrastructure/postgres"
	"github.com/iho/debtledger/internal/infrastructure/redis"
	"github.com/iho/debtledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = logg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Fatal().Err(err).Msg("server failed")
	}

	logg.Info().Msg("server stopped")
}

// storage is the set of repositories the engine runs on.
type storage struct {
	txManager usecase.TransactionManager
	debts     usecase.DebtRepository
	additions usecase.AdditionRepository
	payments  usecase.PaymentRepository
	disputes  usecase.DisputeRepository
	outbox    usecase.OutboxRepository
	activity  usecase.ActivityRepository
	retrier   usecase.Retrier
	pool      *pgxpool.Pool
	checks    []handler.HealthCheck
	close     func()
}

// openStorage builds the repositories selected by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, logg zerolog.Logger, m *metrics.Metrics) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.NewStore()
		logg.Warn().Msg("using in-memory storage, data is lost on restart")

		return &storage{
			txManager: memory.NewTxManager(store),
			debts:     memory.NewDebtRepository(store),
			additions: memory.NewAdditionRepository(store),
			payments:  memory.NewPaymentRepository(store),
			disputes:  memory.NewDisputeRepository(store),
			outbox:    memory.NewOutboxRepository(store),
			activity:  memory.NewActivityRepository(store),
			close:     func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logg); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logg.Info().Msg("connected to postgres")

	var outbox usecase.OutboxRepository = postgresRepo.NewOutboxRepository(pool)
	if !cfg.EventsEnabled {
		outbox = postgresRepo.NewNullOutboxRepository()
	}

	return &storage{
		txManager: postgresRepo.NewTxManager(pool, postgresRepo.WithLockTimeout(cfg.LockTimeout)),
		debts:     postgresRepo.NewDebtRepository(pool),
		additions: postgresRepo.NewAdditionRepository(pool),
		payments:  postgresRepo.NewPaymentRepository(pool),
		disputes:  postgresRepo.NewDisputeRepository(pool),
		outbox:    outbox,
		activity:  postgresRepo.NewActivityRepository(pool),
		retrier:   postgresRepo.NewRetrier(logg, m),
		pool:      pool,
		checks:    []handler.HealthCheck{{Name: "postgres", Pinger: pool}},
		close:     pool.Close,
	}, nil
}

// connectRedis returns nil when REDIS_URL is empty.
func connectRedis(ctx context.Context, cfg *config.Config, logg zerolog.Logger) (*goredis.Client, error) {
	if cfg.RedisURL == "" {
		logg.Warn().Msg("REDIS_URL is empty, idempotency and summary caching are disabled")
		return nil, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logg.Info().Msg("connected to redis")

	return client, nil
}

// app is the wired server before it starts listening.
type app struct {
	router    http.Handler
	publisher *eventpublisher.EventPublisher
	limiter   *middleware.RateLimiter
}

func buildApp(cfg *config.Config, logg zerolog.Logger, reg *prometheus.Registry, m *metrics.Metrics, st *storage, redisClient *goredis.Client) *app {
	idGen := postgresRepo.NewULIDGenerator()

	opts := []usecase.DebtOption{
		usecase.WithMetrics(m),
		usecase.WithLogger(logg),
		usecase.WithMergeIntoDisputed(cfg.MergeIntoDisputed),
	}
	if st.retrier != nil {
		opts = append(opts, usecase.WithRetrier(st.retrier))
	}

	routerCfg := httpAdapter.RouterConfig{
		IdempotencyTTL: cfg.IdempotencyTTL,
		Logger:         logg,
		Metrics:        m,
		Gatherer:       reg,
	}

	checks := st.checks
	var eventSink eventpublisher.Publisher = eventpublisher.NewLogPublisher(logg)

	if redisClient != nil {
		opts = append(opts, usecase.WithSummaryCache(redisRepo.NewCache(redisClient), cfg.SummaryCacheTTL))
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		eventSink = eventpublisher.NewRedisPublisher(redisClient, cfg.EventsChannel)
		checks = append(checks, handler.HealthCheck{
			Name:   "redis",
			Pinger: handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		})
	}

	debtUC := usecase.NewDebtUseCase(
		st.txManager, st.debts, st.additions, st.payments, st.disputes, st.outbox, st.activity, idGen, opts...,
	)
	reconciliationUC := usecase.NewReconciliationUseCase(
		st.txManager, st.debts, st.additions, st.payments, m,
		usecase.WithRepairLog(st.activity),
		usecase.WithRepairLogger(logg),
	)

	routerCfg.DebtHandler = handler.NewDebtHandler(debtUC)
	routerCfg.DisputeHandler = handler.NewDisputeHandler(debtUC)
	routerCfg.SummaryHandler = handler.NewSummaryHandler(debtUC)
	routerCfg.LedgerHandler = handler.NewLedgerHandler(reconciliationUC)
	routerCfg.HealthHandler = handler.NewHealthHandler(checks...)

	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = limiter
	}

	var publisher *eventpublisher.EventPublisher
	if cfg.EventsEnabled {
		publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: st.outbox,
			Publisher:  eventSink,
			Logger:     logg,
			Metrics:    m,
			Interval:   cfg.EventsInterval,
		})
	}

	return &app{
		router:    httpAdapter.NewRouter(routerCfg),
		publisher: publisher,
		limiter:   limiter,
	}
}

func run(ctx context.Context, cfg *config.Config, logg zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg)

	st, err := openStorage(ctx, cfg, logg, m)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := connectRedis(ctx, cfg, logg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	a := buildApp(cfg, logg, reg, m, st, redisClient)

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if a.publisher != nil {
		go func() {
			if err := a.publisher.Start(workers); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}
	if a.limiter != nil {
		go a.limiter.RunCleanup(time.Hour, workers.Done())
	}
	if st.pool != nil {
		go reportPoolStats(workers, st.pool, m)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logg.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().TotalConns()))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
