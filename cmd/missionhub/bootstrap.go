package main

import (
	"context"
	"fmt"

	"civic-engagement/missionhub/internal/api"
	"civic-engagement/missionhub/internal/config"
	"civic-engagement/missionhub/internal/db"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds the wired process state shared by every command
type app struct {
	deps     *api.Dependencies
	registry *prometheus.Registry
	close    func()
}

// bootstrap connects the stores, migrates them and wires every dependency
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	primary, err := db.InitPostgresORM(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(primary); err != nil {
		return nil, err
	}

	var analytics *sqlx.DB
	if cfg.AnalyticsDSN != "" {
		analytics, err = db.InitAnalytics(cfg.AnalyticsDSN)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateAnalytics(ctx, analytics); err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps, err := api.InitDependencies(cfg, primary, analytics, metrics.NewMetricsRegistryWith(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	return &app{
		deps:     deps,
		registry: registry,
		close: func() {
			if err := deps.Close(); err != nil {
				logging.Warn("Failed to close cache", "error", err)
			}
			if analytics != nil {
				_ = analytics.Close()
			}
			if sqlDB, err := primary.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
