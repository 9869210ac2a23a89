package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/young626-jang/ltv-flask/internal/app"
	"github.com/young626-jang/ltv-flask/internal/config"
	"github.com/young626-jang/ltv-flask/internal/logging"
	"github.com/young626-jang/ltv-flask/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire analysis service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := components.Close(context.Background()); err != nil {
			logger.Warn("closing stores failed", "error", err)
		}
	}()

	apiHandlers := server.NewAPIHandlers(logger, components.Service, cfg.HTTP.MaxDocumentBytes)

	var gatherer prometheus.Gatherer
	if cfg.HTTP.MetricsEnabled {
		gatherer = components.Registry
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           components.Health(),
		API:              apiHandlers,
		Metrics:          components.Metrics,
		Gatherer:         gatherer,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
