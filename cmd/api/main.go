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

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	cacheadapters "github.com/zatekoja/limsgateway/internal/adapters/cache"
	"github.com/zatekoja/limsgateway/internal/adapters/database"
	"github.com/zatekoja/limsgateway/internal/adapters/events"
	"github.com/zatekoja/limsgateway/internal/api/handlers"
	"github.com/zatekoja/limsgateway/internal/api/routes"
	"github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/domain/repositories"
	"github.com/zatekoja/limsgateway/internal/infrastructure/clients/lims"
	"github.com/zatekoja/limsgateway/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/limsgateway/internal/infrastructure/clients/redis"
	"github.com/zatekoja/limsgateway/internal/infrastructure/observability"
	queryadapters "github.com/zatekoja/limsgateway/internal/query/adapters"
	"github.com/zatekoja/limsgateway/internal/query/cache"
	queryservices "github.com/zatekoja/limsgateway/internal/query/services"
	"github.com/zatekoja/limsgateway/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Gateway stopped with error")
	}
	logger.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := observability.NewCacheMetrics(registry)

	storeOpts := []cache.Option{
		cache.WithObserver(cacheMetrics),
		cache.WithIdleTimeout(cfg.Cache.IdleTimeout),
		cache.WithLogger(logger.With().Str("component", "query_cache").Logger()),
	}

	// Redis carries the shared cache and the invalidation event bus. Without
	// it the gateway runs as a single replica on an in-process bus.
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable; running without shared cache and peer invalidation")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient, logger)
			if cfg.Cache.SharedEnabled {
				shared := queryadapters.NewQueryCacheAdapter(cacheadapters.NewRedisAdapter(redisClient))
				storeOpts = append(storeOpts, cache.WithSharedCache(shared))
				logger.Info().Msg("Shared query cache enabled")
			}
		}
	}

	if eventBus == nil {
		eventBus = events.NewMemoryEventBus()
	}

	var journal repositories.MutationJournalRepository
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("PostgreSQL unavailable; mutation journal disabled")
		} else {
			defer pgClient.Close()
			adapter := database.NewMutationJournalAdapter(pgClient)
			if err := adapter.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("prepare mutation journal: %w", err)
			}
			journal = adapter
		}
	}

	store := cache.NewStore(storeOpts...)
	go store.RunJanitor(ctx, cfg.Cache.JanitorInterval)

	limsClient := lims.NewClient(cfg.LIMS.BaseURL, cfg.LIMS.Timeout,
		lims.WithMetrics(metrics),
		lims.WithLogger(logger),
	)

	invalidator := services.NewInvalidator(store, eventBus, cacheMetrics, instanceID(cfg), logger)

	invalidationService := services.NewCacheInvalidationService(invalidator, eventBus, logger)
	if err := invalidationService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start cache invalidation service")
	}

	notifier := services.NewNotificationService(services.DefaultNotificationCapacity, logger)
	mutations := services.NewMutationService(limsClient, invalidator, notifier, journal, cacheMetrics, logger)
	queries := queryservices.NewQueryService(limsClient, store, queryservices.TTLs{
		List:   cfg.Cache.ListTTL,
		Detail: cfg.Cache.DetailTTL,
	}, logger)

	pageSize := cfg.ListView.DefaultPageSize
	router := routes.NewRouter(routes.Handlers{
		Accessions:    handlers.NewAccessionHandler(queries, mutations, pageSize),
		Patients:      handlers.NewPatientHandler(queries, mutations, pageSize),
		Organizations: handlers.NewOrganizationHandler(queries, mutations),
		Notifications: handlers.NewNotificationHandler(notifier),
		Admin:         handlers.NewAdminHandler(invalidator, store, journal),
		Stream: handlers.NewStreamHandler(eventBus, handlers.DefaultHeartbeatInterval,
			handlers.WithCoalesceWindow(cfg.ListView.StreamCoalesce)),
	}, metrics, registry, cfg.Server.AllowedOrigins, logger)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// Closing the bus ends open invalidation streams so Shutdown can drain.
	server.RegisterOnShutdown(func() {
		invalidationService.Stop()
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", serverAddr).Str("lims", cfg.LIMS.BaseURL).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}
	return nil
}

// instanceID names this replica on the invalidation channel
func instanceID(cfg *config.Config) string {
	if cfg.InstanceID != "" {
		return cfg.InstanceID
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "gateway"
	}
	return host + "-" + uuid.NewString()[:8]
}
