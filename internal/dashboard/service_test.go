package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

const testSource = "USGS hourly feed"

// --- mocks ---

type mockSource struct {
	records []domain.QuakeRecord
	err     error
}

func (m *mockSource) FetchSummary(_ context.Context) ([]domain.QuakeRecord, error) {
	return m.records, m.err
}

type mockPublisher struct {
	mu        sync.Mutex
	snapshots []domain.Snapshot
	err       error
	published chan struct{}
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(chan struct{}, 16)}
}

func (m *mockPublisher) PublishSnapshot(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	m.snapshots = append(m.snapshots, snap)
	m.mu.Unlock()
	m.published <- struct{}{}
	return m.err
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

type mockGeocoder struct{}

func (mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{FormattedAddress: "Ridgecrest, California"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []domain.QuakeRecord {
	return []domain.QuakeRecord{
		{ID: "q1", Magnitude: domain.Float(7.1), MagnitudeBand: "strong", Lat: domain.Float(35), Lon: domain.Float(-120)},
		{ID: "q2", MagnitudeBand: "unknown"},
		{ID: "q3", Magnitude: domain.Float(3.0), MagnitudeBand: "light", Lat: domain.Float(10), Lon: domain.Float(10)},
	}
}

func waitPublished(t *testing.T, p *mockPublisher) {
	t.Helper()
	select {
	case <-p.published:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot publish")
	}
}

// --- tests ---

func TestService_Snapshot_HappyPath(t *testing.T) {
	fixed := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	dashboard.SetClock(clockwork.NewFakeClockAt(fixed))
	defer dashboard.SetClock(nil)

	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, nil, testSource, discardLogger(), metrics)

	snap := svc.Snapshot(context.Background())

	assert.Equal(t, fixed, snap.GeneratedAt)
	assert.Equal(t, testSource, snap.Source)
	assert.Equal(t, 3, snap.Stats.Total)
	assert.Equal(t, 7.1, snap.Stats.MaxMagnitude)
	assert.Len(t, snap.Markers, 2)
	assert.Equal(t, domain.View{Center: domain.Position{Lat: 35, Lon: -120}, Zoom: domain.CloseZoom}, snap.View)
	assert.NoError(t, svc.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotsBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnplottableRecords))
}

func TestService_Snapshot_FetchFailureYieldsEmpty(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(&mockSource{err: errors.New("connection refused")}, nil, nil, testSource, discardLogger(), metrics)

	snap := svc.Snapshot(context.Background())

	assert.Equal(t, 0, snap.Stats.Total)
	assert.Equal(t, 0.0, snap.Stats.MaxMagnitude)
	assert.Empty(t, snap.Stats.BandCounts)
	assert.Empty(t, snap.Markers)
	assert.True(t, snap.Panel.Empty)
	assert.Equal(t, domain.View{Center: domain.FallbackCenter(), Zoom: domain.WideZoom}, snap.View)
	assert.Error(t, svc.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FeedFetchErrors))
}

func TestService_Snapshot_FillsMissingPlaces(t *testing.T) {
	svc := dashboard.New(&mockSource{records: sampleRecords()}, mockGeocoder{}, nil, testSource, discardLogger(), observability.NewMetricsForTesting())

	snap := svc.Snapshot(context.Background())

	require.Len(t, snap.Markers, 2)
	for _, m := range snap.Markers {
		assert.Equal(t, "Ridgecrest, California", m.Popup.Place)
	}
}

func TestService_Snapshot_FreshPerCall(t *testing.T) {
	src := &mockSource{records: sampleRecords()}
	svc := dashboard.New(src, nil, nil, testSource, discardLogger(), observability.NewMetricsForTesting())

	first := svc.Snapshot(context.Background())
	src.records = src.records[:1]
	second := svc.Snapshot(context.Background())

	assert.Equal(t, 3, first.Stats.Total)
	assert.Equal(t, 1, second.Stats.Total)
}

func TestService_Refresh_Publishes(t *testing.T) {
	pub := newMockPublisher()
	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, pub, testSource, discardLogger(), metrics)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, snap, pub.snapshots[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotsPublished))
}

func TestService_Refresh_PublishError(t *testing.T) {
	pub := newMockPublisher()
	pub.err = errors.New("broker unavailable")
	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, pub, testSource, discardLogger(), metrics)

	snap, err := svc.Refresh(context.Background())
	require.Error(t, err)

	assert.Equal(t, 3, snap.Stats.Total, "snapshot is still returned")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishErrors))
}

func TestService_Refresh_SkipsPublishAfterFetchFailure(t *testing.T) {
	pub := newMockPublisher()
	metrics := observability.NewMetricsForTesting()
	src := &mockSource{err: errors.New("connection refused")}
	svc := dashboard.New(src, nil, pub, testSource, discardLogger(), metrics)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Stats.Total)
	assert.Equal(t, 0, pub.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishSkipped))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SnapshotsPublished))

	src.err = nil
	src.records = sampleRecords()
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pub.count())
}

func TestService_Refresh_NoPublisher(t *testing.T) {
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, nil, testSource, discardLogger(), observability.NewMetricsForTesting())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
}

func TestService_Run_RefreshesOnEveryTick(t *testing.T) {
	fake := clockwork.NewFakeClock()
	dashboard.SetClock(fake)
	defer dashboard.SetClock(nil)

	pub := newMockPublisher()
	metrics := observability.NewMetricsForTesting()
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, pub, testSource, discardLogger(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx, time.Minute) }()

	waitPublished(t, pub)

	require.NoError(t, fake.BlockUntilContext(ctx, 1))
	fake.Advance(time.Minute)
	waitPublished(t, pub)

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, 2, pub.count())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RefreshRunning))
}

func TestService_Run_ContextCancellation(t *testing.T) {
	pub := newMockPublisher()
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, pub, testSource, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Run(ctx, time.Minute))
	assert.Equal(t, 0, pub.count())
}

func TestService_Run_KeepsGoingAfterPublishError(t *testing.T) {
	fake := clockwork.NewFakeClock()
	dashboard.SetClock(fake)
	defer dashboard.SetClock(nil)

	pub := newMockPublisher()
	pub.err = errors.New("broker unavailable")
	svc := dashboard.New(&mockSource{records: sampleRecords()}, nil, pub, testSource, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx, time.Minute) }()

	waitPublished(t, pub)
	require.NoError(t, fake.BlockUntilContext(ctx, 1))
	fake.Advance(time.Minute)
	waitPublished(t, pub)

	cancel()
	require.NoError(t, <-errCh)
}
