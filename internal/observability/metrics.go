package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	SnapshotsBuilt     prometheus.Counter
	FeedFetchErrors    prometheus.Counter
	FeedFetchDuration  prometheus.Histogram
	RecordsFetched     prometheus.Histogram
	UnplottableRecords prometheus.Counter
	InvalidCoordinates prometheus.Counter

	// Snapshot publishing metrics.
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	PublishSkipped     prometheus.Counter
	RefreshRunning     prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all dashboard metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_built_total",
			Help:      "Total dashboard snapshots computed.",
		}),
		FeedFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_errors_total",
			Help:      "Total failed fetches from the quake API.",
		}),
		FeedFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Quake API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsFetched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_fetched",
			Help:      "Number of quake records per fetched snapshot.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
		}),
		UnplottableRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unplottable_records_total",
			Help:      "Total records dropped from the map for missing coordinates.",
		}),
		InvalidCoordinates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_coordinates_total",
			Help:      "Total decoded records with out-of-range coordinates.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Total snapshots written to the snapshot topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed snapshot publishes.",
		}),
		PublishSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_skipped_total",
			Help:      "Total refreshes not published because the quake API fetch failed.",
		}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}

	reg.MustRegister(
		m.SnapshotsBuilt,
		m.FeedFetchErrors,
		m.FeedFetchDuration,
		m.RecordsFetched,
		m.UnplottableRecords,
		m.InvalidCoordinates,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.PublishSkipped,
		m.RefreshRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotsBuilt:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "snapshots_built_total"}),
		FeedFetchErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "feed_fetch_errors_total"}),
		FeedFetchDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "feed_fetch_duration_seconds"}),
		RecordsFetched:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "records_fetched"}),
		UnplottableRecords: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "unplottable_records_total"}),
		InvalidCoordinates: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "invalid_coordinates_total"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "snapshots_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
		PublishSkipped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_skipped_total"}),
		RefreshRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "refresh_running"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}),
	}
}
