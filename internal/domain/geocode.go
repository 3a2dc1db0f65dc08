package domain

import (
	"context"
	"log/slog"
)

// FillMissingPlaces returns a copy of records in which plottable records with
// no place carry the reverse-geocoded address instead. The input slice and its
// records are left untouched. A nil geocoder returns records as-is; lookup
// failures leave the place absent (graceful degradation).
func FillMissingPlaces(ctx context.Context, records []QuakeRecord, geocoder Geocoder, logger *slog.Logger) []QuakeRecord {
	if geocoder == nil {
		return records
	}

	out := make([]QuakeRecord, len(records))
	copy(out, records)

	for i, r := range out {
		if r.Place != nil || !r.Plottable() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		result, err := geocoder.ReverseGeocode(ctx, *r.Lat, *r.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"quake_id", r.ID,
				"lat", *r.Lat,
				"lon", *r.Lon,
				"error", err,
			)
			continue
		}
		if result.FormattedAddress != "" {
			out[i].Place = String(result.FormattedAddress)
		}
	}

	return out
}
