// Package app assembles the analysis service and its stores from
// configuration. The server, the ingest job and registryctl share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/young626-jang/ltv-flask/internal/cache"
	"github.com/young626-jang/ltv-flask/internal/config"
	"github.com/young626-jang/ltv-flask/internal/graph"
	"github.com/young626-jang/ltv-flask/internal/history"
	"github.com/young626-jang/ltv-flask/internal/metrics"
	"github.com/young626-jang/ltv-flask/internal/registry"
	"github.com/young626-jang/ltv-flask/internal/repository"
	"github.com/young626-jang/ltv-flask/internal/server"
	"github.com/young626-jang/ltv-flask/internal/service"
)

// App holds the wired service and everything that must be closed with it.
type App struct {
	Graph    graph.Client
	History  *history.Store
	Cache    cache.Cache
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Service  *service.AnalysisService

	logger  *slog.Logger
	closers []func(context.Context) error
}

// Build connects every store named by cfg. Without GRAPH_URI the graph lives
// in memory; without REDIS_URL so does the cache.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.Graph, err = buildGraphClient(ctx, logger, cfg.Graph); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	a.closers = append(a.closers, a.Graph.Close)

	if a.History, err = history.Open(ctx, cfg.History.Driver, cfg.History.DSN); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return a.History.Close() })
	if err = a.History.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	if a.Cache, err = buildCache(ctx, logger, cfg.Cache); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return a.Cache.Close() })

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	repo := repository.New(a.Graph)
	if err = repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	a.Service, err = service.NewAnalysisService(service.Dependencies{
		Engine:     NewEngine(cfg.Engine),
		Repository: repo,
		History:    a.History,
		Cache:      a.Cache,
		Metrics:    a.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewEngine builds the reconstruction engine from its configuration.
func NewEngine(cfg config.EngineConfig) *registry.Engine {
	return registry.NewEngine(registry.Options{
		BackfillWindow:       cfg.BackfillWindow,
		StaleAfter:           cfg.StaleAfter,
		RecentTransferWindow: cfg.RecentTransferWindow,
	})
}

// Health reports on every store the service writes to.
func (a *App) Health() server.CompositeHealth {
	return server.CompositeHealth{
		{Name: "graph", Probe: server.GraphHealthService{Client: a.Graph}},
		{Name: "history", Probe: server.PingHealth(a.History.Ping)},
		{Name: "cache", Probe: server.PingHealth(a.Cache.Ping)},
	}
}

// Close releases the stores in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (graph.Client, error) {
	if cfg.URI == "" {
		logger.Warn("GRAPH_URI not set, keeping the property graph in memory")
		return graph.NewMemoryClient(), nil
	}

	opts := graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
		AcquireTimeout: cfg.AcquireTimeout,
		MaxRetryTime:   cfg.MaxRetryTime,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.URI, "database", cfg.Database)
	return client, nil
}

func buildCache(ctx context.Context, logger *slog.Logger, cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.TTL), nil
	}
	c, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to redis cache", "ttl", cfg.TTL.String())
	return c, nil
}
