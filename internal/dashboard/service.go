package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

// Source fetches the current snapshot of quake records.
type Source interface {
	FetchSummary(ctx context.Context) ([]domain.QuakeRecord, error)
}

// Publisher delivers computed snapshots downstream.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// Service runs one dashboard rendering cycle per call: fetch, optional place
// enrichment, aggregate and encode. Fetch failures never reach the core; the
// cycle falls back to an empty record set.
type Service struct {
	source      Source
	geocoder    domain.Geocoder
	publisher   Publisher
	sourceLabel string
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Service. geocoder and publisher may be nil to disable place
// enrichment and snapshot publishing.
func New(source Source, geocoder domain.Geocoder, publisher Publisher, sourceLabel string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:      source,
		geocoder:    geocoder,
		publisher:   publisher,
		sourceLabel: sourceLabel,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once at least one fetch has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no quake snapshot has been fetched yet")
	}
	return nil
}

// Snapshot fetches fresh records and computes the dashboard state from them.
func (s *Service) Snapshot(ctx context.Context) domain.Snapshot {
	snap, _ := s.build(ctx)
	return snap
}

// build reports whether the snapshot came from a successful fetch.
func (s *Service) build(ctx context.Context) (domain.Snapshot, bool) {
	records, fetched := s.fetch(ctx)
	records = domain.FillMissingPlaces(ctx, records, s.geocoder, s.logger)

	snap := domain.BuildSnapshot(records, s.sourceLabel, clock.Now())

	s.metrics.SnapshotsBuilt.Inc()
	s.metrics.UnplottableRecords.Add(float64(snap.Unplottable))
	s.logger.Debug("snapshot built",
		"total", snap.Stats.Total,
		"markers", len(snap.Markers),
		"max_magnitude", snap.Stats.MaxMagnitude,
	)
	return snap, fetched
}

func (s *Service) fetch(ctx context.Context) ([]domain.QuakeRecord, bool) {
	records, err := s.source.FetchSummary(ctx)
	if err != nil {
		s.metrics.FeedFetchErrors.Inc()
		s.logger.Warn("failed to fetch quake summary, using empty snapshot", "error", err)
		return []domain.QuakeRecord{}, false
	}
	s.metrics.RecordsFetched.Observe(float64(len(records)))
	s.ready.Store(true)
	return records, true
}

// Refresh builds a snapshot and publishes it when a publisher is configured.
// The empty fallback from a failed fetch is returned but never published, so
// downstream consumers keep the last good snapshot through an outage.
func (s *Service) Refresh(ctx context.Context) (domain.Snapshot, error) {
	snap, fetched := s.build(ctx)
	if s.publisher == nil {
		return snap, nil
	}
	if !fetched {
		s.metrics.PublishSkipped.Inc()
		s.logger.Info("skipping snapshot publish after failed fetch")
		return snap, nil
	}

	if err := s.publisher.PublishSnapshot(ctx, snap); err != nil {
		s.metrics.PublishErrors.Inc()
		return snap, err
	}
	s.metrics.SnapshotsPublished.Inc()
	return snap, nil
}

// Run refreshes immediately and then once per interval until the context is
// cancelled. Publish failures are logged and retried on the next tick.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("refresh loop started", "interval", interval)
	s.metrics.RefreshRunning.Set(1)
	defer s.metrics.RefreshRunning.Set(0)

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			s.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		}

		if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("publish snapshot failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}
