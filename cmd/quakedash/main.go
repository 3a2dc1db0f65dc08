package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-dashboard-service/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/quake-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-dashboard-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-dashboard-service/internal/config"
	"github.com/couchcryptid/quake-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.FeedBaseURL == "" {
		logger.Warn("QUAKE_API_BASE_URL is not set, every fetch will fail and the dashboard will stay empty")
	}
	source := feed.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, metrics, logger)

	// Place enrichment (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox place enrichment enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox place enrichment disabled")
	}

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var (
		publisher dashboard.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "interval", cfg.RefreshInterval)
	}

	svc := dashboard.New(source, geocoder, publisher, cfg.SourceLabel, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the refresh loop only when there is somewhere to publish to;
	// otherwise snapshots are computed per API request.
	if publisher != nil {
		go func() {
			if err := svc.Run(ctx, cfg.RefreshInterval); err != nil {
				logger.Error("refresh loop error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
