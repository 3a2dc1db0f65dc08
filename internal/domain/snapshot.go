package domain

import "time"

// Snapshot is the full dashboard state computed from one fetch.
type Snapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Source      string             `json:"source"`
	Stats       AggregateStats     `json:"stats"`
	Panel       StatsView          `json:"panel"`
	Markers     []MarkerDescriptor `json:"markers"`
	View        View               `json:"view"`
	Unplottable int                `json:"unplottable"`
}

// BuildSnapshot runs the aggregator and the marker encoder over the same
// records. The two never consult each other.
func BuildSnapshot(records []QuakeRecord, source string, generatedAt time.Time) Snapshot {
	stats := ComputeStats(records)
	markers := BuildMarkers(records)

	return Snapshot{
		GeneratedAt: generatedAt.UTC(),
		Source:      source,
		Stats:       stats,
		Panel:       BuildStatsView(stats, source),
		Markers:     markers,
		View:        ChooseInitialView(records),
		Unplottable: len(records) - len(markers),
	}
}
