// cmd/worker-manager/main.go
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dinefine-workers/internal/api"
	"dinefine-workers/internal/common/camunda"
	"dinefine-workers/internal/common/config"
	"dinefine-workers/internal/common/database"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/observability"
	"dinefine-workers/internal/engine"
	"dinefine-workers/internal/extraction"
	"dinefine-workers/internal/menucache"
	"dinefine-workers/internal/profile"
	"dinefine-workers/internal/quota"
	"dinefine-workers/internal/safety/taxonomy"
	"dinefine-workers/pkg/registry"

	am "dinefine-workers/internal/workers/dietary/analyze-menu"
	em "dinefine-workers/internal/workers/dietary/evaluate-menu"
	sr "dinefine-workers/internal/workers/dietary/scan-restaurant"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("postgres schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	checks := map[string]api.ReadinessCheck{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
		"zeebe":    zeebe.HealthCheck,
	}

	// --- Menu cache ---
	var store menucache.Store
	switch cfg.Safety.CacheBackend {
	case config.CacheBackendPostgres:
		store = menucache.NewPostgresStore(pg.DB)
	case config.CacheBackendElasticsearch:
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}

		esStore := menucache.NewElasticStore(es.Client, cfg.Database.Elasticsearch.MenuIndex)
		if err := esStore.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("menu index setup failed", zap.Error(err))
		}
		store = esStore
		checks["elasticsearch"] = es.Ping
		zapLog.Info("Elasticsearch connected successfully")
	default:
		// Staleness is decided by the policy; expiry only bounds memory.
		store = menucache.NewRedisStore(rdb.Client, 4*cfg.Safety.FreshnessWindow())
	}

	// --- Quota ledger ---
	var ledger quota.Ledger
	switch cfg.Quota.LedgerBackend {
	case config.LedgerBackendPostgres:
		ledger = quota.NewPostgresLedger(pg.DB, cfg.Quota.DailyScrapeLimit)
	default:
		ledger = quota.NewRedisLedger(rdb.Client, cfg.Quota.DailyScrapeLimit)
	}

	eng := engine.New(engine.Deps{
		Taxonomy: taxonomy.Default(),
		Store:    store,
		Policy: &menucache.Policy{
			FreshnessWindow:  cfg.Safety.FreshnessWindow(),
			MinItems:         cfg.Safety.MinCachedItems,
			ShortQueryLength: cfg.Safety.ShortQueryLength,
		},
		Ledger:        ledger,
		DailyLimit:    cfg.Quota.DailyScrapeLimit,
		CreditTimeout: config.GetDuration(cfg.Quota.CreditTimeout),
		Extractor:     extraction.NewClient(cfg.APIs.Extraction, log),
		Profiles: profile.NewStore(pg.DB, rdb.Client,
			time.Duration(cfg.Safety.ProfileCacheTTL)*time.Second, log),
	}, log)

	zapLog.Info("Safety engine ready",
		zap.String("cacheBackend", cfg.Safety.CacheBackend),
		zap.String("ledgerBackend", cfg.Quota.LedgerBackend),
		zap.Int("dailyScrapeLimit", cfg.Quota.DailyScrapeLimit),
	)

	// --- Workers ---
	checkRegistry(cfg.Registry.Path, log, sr.TaskType, em.TaskType, am.TaskType)

	client := zeebe.GetClient()
	workers := []*camunda.Worker{
		camunda.StartWorker(client, sr.TaskType, config.GetWorkerConfig(cfg, sr.TaskType),
			sr.NewHandler(sr.LoadConfig(config.GetWorkerConfig(cfg, sr.TaskType)), eng, log).Handle, obs, log),
		camunda.StartWorker(client, em.TaskType, config.GetWorkerConfig(cfg, em.TaskType),
			em.NewHandler(em.LoadConfig(config.GetWorkerConfig(cfg, em.TaskType)), eng, log).Handle, obs, log),
		camunda.StartWorker(client, am.TaskType, config.GetWorkerConfig(cfg, am.TaskType),
			am.NewHandler(am.LoadConfig(config.GetWorkerConfig(cfg, am.TaskType), cfg.APIs.Extraction), eng, log).Handle, obs, log),
	}
	zapLog.Info("Dietary workers registered")

	// --- API, health & metrics server ---
	srv := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           api.NewRouter(eng, checks, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			zapLog.Info("Shutdown signal received, stopping workers...", zap.String("signal", sig.String()))
		case <-gCtx.Done():
			zapLog.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping HTTP server", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Worker manager error", zap.Error(err))
	}

	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about task types the activity registry does not list.
func checkRegistry(path string, log logger.Logger, taskTypes ...string) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	for _, tt := range reg.MissingTaskTypes(taskTypes...) {
		log.Warn("worker task type missing from activity registry", map[string]interface{}{
			"taskType": tt,
			"path":     path,
		})
	}
}
