// Command quakestats runs the dashboard computations over one snapshot of
// quake records and prints the statistics panel and marker list. Records are
// read from a JSON file or fetched from the quake API.
//
// Usage:
//
//	go run ./cmd/quakestats -in testdata/summary.json
//	go run ./cmd/quakestats -url https://api.example.com/prod -json
//	go run ./cmd/quakestats -url https://api.example.com/prod -latest
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/quake-dashboard-service/internal/adapter/feed"
	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

const defaultSourceLabel = "USGS hourly feed"

type options struct {
	in      string
	url     string
	source  string
	asJSON  bool
	latest  bool
	timeout time.Duration
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	// Nothing serves /metrics here; the collectors only need somewhere to live.
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	if opts.latest {
		client := feed.NewClient(opts.url, opts.timeout, metrics, logger)
		raw, err := client.FetchLatest(ctx)
		if err != nil {
			return fmt.Errorf("fetch latest: %w", err)
		}
		_, err = fmt.Fprintln(stdout, string(raw))
		return err
	}

	records, err := loadRecords(ctx, opts, metrics, logger)
	if err != nil {
		return err
	}

	snap := domain.BuildSnapshot(records, opts.source, time.Now())
	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return printSnapshot(stdout, snap)
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("quakestats", flag.ContinueOnError)
	fs.StringVar(&opts.in, "in", "", "path to a JSON array of quake summary records")
	fs.StringVar(&opts.url, "url", "", "quake API base URL to fetch /earthquakes/summary from")
	fs.StringVar(&opts.source, "source", defaultSourceLabel, "data source label shown in the panel")
	fs.BoolVar(&opts.asJSON, "json", false, "print the full snapshot as JSON")
	fs.BoolVar(&opts.latest, "latest", false, "print the raw /earthquakes/latest document (requires -url)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP timeout for -url fetches")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.latest && opts.url == "":
		return opts, errors.New("-latest requires -url")
	case opts.in == "" && opts.url == "":
		fs.Usage()
		return opts, errors.New("one of -in or -url is required")
	case opts.in != "" && opts.url != "":
		return opts, errors.New("-in and -url are mutually exclusive")
	}
	return opts, nil
}

// loadRecords reads records from -in, or fetches them from -url. A failed
// fetch is reported and replaced by an empty snapshot, matching the service.
func loadRecords(ctx context.Context, opts options, metrics *observability.Metrics, logger *slog.Logger) ([]domain.QuakeRecord, error) {
	if opts.in != "" {
		f, err := os.Open(opts.in)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.in, err)
		}
		defer f.Close()
		return feed.DecodeRecords(f, metrics, logger)
	}

	records, err := feed.NewClient(opts.url, opts.timeout, metrics, logger).FetchSummary(ctx)
	if err != nil {
		logger.Warn("failed to fetch quake summary, using empty snapshot", "error", err)
		return []domain.QuakeRecord{}, nil
	}
	return records, nil
}

func printSnapshot(w io.Writer, snap domain.Snapshot) error {
	panel := snap.Panel

	fmt.Fprintln(w, "=== Snapshot Overview ===")
	if panel.Empty {
		fmt.Fprintln(w, "No data yet. Waiting for backend ingestion…")
	}
	fmt.Fprintf(w, "Total events:   %d\n", panel.Total)
	fmt.Fprintf(w, "Max magnitude:  %s\n", panel.MaxMagnitudeLabel)
	fmt.Fprintf(w, "Data source:    %s\n", panel.SourceLabel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Magnitude Bands ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range panel.Bands {
		bar := strings.Repeat("#", int(row.BarWidth/5))
		fmt.Fprintf(tw, "%s\t%d (%s)\t%s\n", row.Label, row.Count, row.PercentLabel, bar)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "=== Markers (%d plotted, %d without coordinates) ===\n", len(snap.Markers), snap.Unplottable)
	fmt.Fprintf(w, "Initial view: center (%g, %g) zoom %d\n", snap.View.Center.Lat, snap.View.Center.Lon, snap.View.Zoom)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range snap.Markers {
		fmt.Fprintf(tw, "%s\tM %s\t%s\tr=%.2f\t%s\n", m.ID, m.Popup.Magnitude, m.Color, m.Radius, m.Popup.Place)
	}
	return tw.Flush()
}
