package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	summaryJSON = `[
		{"id":"us7000m9g4","time":1714137000000,"mag":7.1,"mag_band":"strong","place":"25 km S of Hualien City, Taiwan","lat":35,"lon":-120,"depth_km":34.8},
		{"id":"ak0245abcd","time":1714137060000,"mag":null,"mag_band":"unknown","place":null,"lat":null,"lon":null,"depth_km":null},
		{"id":"nc75012345","time":1714137120000,"mag":3.0,"mag_band":"light","place":null,"lat":10,"lon":10,"depth_km":null}
	]`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(), discardLogger())
}

func TestClient_FetchSummary_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prod/earthquakes/summary", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(summaryJSON))
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/prod/")
	records, err := c.FetchSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "us7000m9g4", records[0].ID)
	assert.Equal(t, int64(1714137000000), records[0].Time)
	require.NotNil(t, records[0].Magnitude)
	assert.Equal(t, 7.1, *records[0].Magnitude)
	assert.Equal(t, "strong", records[0].MagnitudeBand)
	require.NotNil(t, records[0].DepthKm)
	assert.Equal(t, 34.8, *records[0].DepthKm)

	assert.Nil(t, records[1].Magnitude)
	assert.Nil(t, records[1].Place)
	assert.Nil(t, records[1].Lat)
	assert.Nil(t, records[1].Lon)
	assert.Nil(t, records[1].DepthKm)

	assert.Nil(t, records[2].Place)
	assert.True(t, records[2].Plottable())
}

func TestClient_FetchSummary_NotConfigured(t *testing.T) {
	c := testClient("")

	_, err := c.FetchSummary(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_FetchSummary_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchSummary(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "request to /earthquakes/summary failed with status 502", err.Error())
}

func TestClient_FetchSummary_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /earthquakes/summary")
}

func TestClient_FetchSummary_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, observability.NewMetricsForTesting(), discardLogger())

	_, err := c.FetchSummary(context.Background())
	require.Error(t, err)
}

func TestClient_FetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/earthquakes/latest", r.URL.Path)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).FetchLatest(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw))
}

func TestClient_FetchLatest_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchLatest(context.Background())
	require.Error(t, err)
}

func TestDecodeRecords_CountsInvalidCoordinates(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	data := `[
		{"id":"ok","time":1,"mag":1.0,"mag_band":"micro","place":null,"lat":45,"lon":170,"depth_km":null},
		{"id":"bad","time":2,"mag":1.0,"mag_band":"micro","place":null,"lat":95,"lon":10,"depth_km":null},
		{"id":"partial","time":3,"mag":null,"mag_band":"","place":null,"lat":200,"lon":null,"depth_km":null}
	]`

	records, err := DecodeRecords(strings.NewReader(data), metrics, discardLogger())
	require.NoError(t, err)

	assert.Len(t, records, 3, "out-of-range records are kept")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvalidCoordinates))
}

func TestDecodeRecords_EmptyAndNull(t *testing.T) {
	for _, data := range []string{`[]`, `null`} {
		records, err := DecodeRecords(strings.NewReader(data), observability.NewMetricsForTesting(), discardLogger())
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, validCoordinates(0, 0))
	assert.True(t, validCoordinates(-45.5, 179.9))
	assert.False(t, validCoordinates(91, 0))
	assert.False(t, validCoordinates(0, -181))
}
