package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/golang/geo/s2"

	"github.com/couchcryptid/quake-dashboard-service/internal/domain"
	"github.com/couchcryptid/quake-dashboard-service/internal/observability"
)

// DecodeRecords reads a JSON array of summary records. Every well-typed record
// is kept; records whose coordinates fall outside valid lat/lon ranges are
// logged and counted, but passed through unchanged.
func DecodeRecords(r io.Reader, metrics *observability.Metrics, logger *slog.Logger) ([]domain.QuakeRecord, error) {
	var records []domain.QuakeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode quake records: %w", err)
	}
	if records == nil {
		records = []domain.QuakeRecord{}
	}

	for _, rec := range records {
		if rec.Plottable() && !validCoordinates(*rec.Lat, *rec.Lon) {
			metrics.InvalidCoordinates.Inc()
			logger.Warn("quake record has out-of-range coordinates",
				"quake_id", rec.ID,
				"lat", *rec.Lat,
				"lon", *rec.Lon,
			)
		}
	}

	return records, nil
}

// validCoordinates reports whether lat is within ±90° and lon within ±180°.
func validCoordinates(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
