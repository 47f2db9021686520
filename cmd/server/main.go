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

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/zionledger/internal/adapter/http"
	"github.com/iho/zionledger/internal/adapter/http/handler"
	"github.com/iho/zionledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/zionledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/zionledger/internal/adapter/repository/redis"
	"github.com/iho/zionledger/internal/infrastructure/balancedef"
	"github.com/iho/zionledger/internal/infrastructure/config"
	"github.com/iho/zionledger/internal/infrastructure/eventpublisher"
	"github.com/iho/zionledger/internal/infrastructure/logger"
	"github.com/iho/zionledger/internal/infrastructure/metrics"
	"github.com/iho/zionledger/internal/infrastructure/postgres"
	"github.com/iho/zionledger/internal/infrastructure/redis"
	"github.com/iho/zionledger/internal/usecase"
)

const limiterIdleTimeout = time.Hour

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Version: version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Balance definitions are validated before anything touches the network.
	registry, err := balancedef.Load(cfg.BalanceDefinitionsPath)
	if err != nil {
		return fmt.Errorf("load balance definitions: %w", err)
	}
	if _, err := registry.Definition(cfg.DefaultBalanceName); err != nil {
		return fmt.Errorf("default balance: %w", err)
	}
	isolation, err := postgresRepo.ParseIsolation(cfg.DatabaseIsolation)
	if err != nil {
		return err
	}
	log.Info().Strs("balances", registry.Names()).Msg("balance definitions loaded")

	pool, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool).WithIsolation(isolation)
	entrySetRepo := postgresRepo.NewEntrySetRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// A nil outbox makes the entry set writer skip event recording.
	var outboxRepo usecase.OutboxRepository
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	// Initialize use cases
	entrySetUC := usecase.NewEntrySetUseCase(txManager, entrySetRepo, outboxRepo, idGen).
		WithRetrier(postgresRepo.NewRetrier(log).WithMetrics(m)).
		WithMetrics(m).
		WithLogger(log)
	balanceUC := usecase.NewBalanceUseCase(registry, entryRepo).
		WithDefaultBalanceName(cfg.DefaultBalanceName).
		WithMetrics(m).
		WithLogger(log)
	entryUC := usecase.NewEntryUseCase(entryRepo)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo).
		WithMetrics(m).
		WithLogger(log)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
		go cleanupLimiters(ctx, rateLimiter)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntrySetHandler: handler.NewEntrySetHandler(entrySetUC),
		BalanceHandler:  handler.NewBalanceHandler(balanceUC),
		EntryHandler:    handler.NewEntryHandler(entryUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          log,
		Metrics:         m,
		Gatherer:        reg,
		RateLimiter:     rateLimiter,
		InternalSecret:  cfg.InternalSecret,
	})

	if cfg.OutboxEnabled {
		worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  newPublisher(cfg, redisClient, m, log),
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
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

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// connectPostgres opens the pool, retrying while the database comes up.
func connectPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := retryStartup(ctx, cfg.DatabaseTimeout, log, func() error {
		var err error
		pool, err = postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// retryStartup retries op with exponential backoff for at most maxElapsed.
func retryStartup(ctx context.Context, maxElapsed time.Duration, log zerolog.Logger, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Warn().Err(err).Dur("retry_in", next).Msg("dependency not ready")
	})
}

// newPublisher streams events to Redis when a client is configured and logs them otherwise.
func newPublisher(cfg *config.Config, client *goredis.Client, m *metrics.Metrics, log zerolog.Logger) eventpublisher.Publisher {
	if client == nil {
		return eventpublisher.NewLogPublisher(log)
	}

	return redisRepo.NewStreamPublisher(client, cfg.RedisStream, cfg.RedisStreamMax).WithMetrics(m)
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(limiterIdleTimeout)
		}
	}
}
