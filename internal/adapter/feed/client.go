package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

const (
	summaryPath = "/earthquakes/summary"
	latestPath  = "/earthquakes/latest"
)

// ErrNotConfigured is returned by every fetch when no base URL is set.
var ErrNotConfigured = errors.New("API base URL not configured")

// StatusError reports a non-2xx response from the quake API.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.Path, e.StatusCode)
}

// Client fetches quake snapshots from the quake API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a quake API client. An empty baseURL yields a client whose
// fetches all fail with ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchSummary returns the decoded summary records for the latest ingested snapshot.
func (c *Client) FetchSummary(ctx context.Context) ([]domain.QuakeRecord, error) {
	body, err := c.get(ctx, summaryPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	records, err := DecodeRecords(body, c.metrics, c.logger)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", summaryPath, err)
	}
	return records, nil
}

// FetchLatest returns the raw JSON document served at /earthquakes/latest.
func (c *Client) FetchLatest(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, latestPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", latestPath, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decode %s: invalid JSON", latestPath)
	}
	return json.RawMessage(data), nil
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	c.logger.Debug("quake API response", "path", path, "status", resp.StatusCode)
	return resp.Body, nil
}
