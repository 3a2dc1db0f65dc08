package domain

// AggregateStats summarizes one snapshot of records.
type AggregateStats struct {
	Total        int            `json:"total"`
	MaxMagnitude float64        `json:"max_magnitude"`
	BandCounts   map[string]int `json:"band_counts"`
}

// Count returns the number of records counted under band. Bands that never
// occurred are absent from BandCounts and count as 0.
func (s AggregateStats) Count(band string) int {
	return s.BandCounts[band]
}

// ComputeStats counts records, folds the maximum magnitude and tallies band
// labels. It never fails; an empty input yields a zero total, a max of 0 and
// an empty band map.
//
// The max fold starts at 0 rather than -Inf, so negative magnitudes never
// register. Records without a magnitude are skipped by the fold but still
// counted, as are records without coordinates.
func ComputeStats(records []QuakeRecord) AggregateStats {
	stats := AggregateStats{
		Total:      len(records),
		BandCounts: make(map[string]int),
	}

	for _, r := range records {
		if r.Magnitude != nil && *r.Magnitude > stats.MaxMagnitude {
			stats.MaxMagnitude = *r.Magnitude
		}
		stats.BandCounts[r.BandKey()]++
	}

	return stats
}
