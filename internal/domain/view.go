package domain

import (
	"fmt"
	"math"
)

// BandRow is one line of the magnitude-band panel.
type BandRow struct {
	Band         MagnitudeBand `json:"band"`
	Label        string        `json:"label"`
	Count        int           `json:"count"`
	Percent      float64       `json:"percent"`
	PercentLabel string        `json:"percent_label"`
	BarWidth     float64       `json:"bar_width"` // Percent capped at 100
}

// StatsView is what the statistics panel renders.
type StatsView struct {
	Empty             bool      `json:"empty"`
	Total             int       `json:"total"`
	MaxMagnitudeLabel string    `json:"max_magnitude_label"`
	SourceLabel       string    `json:"source_label"`
	Bands             []BandRow `json:"bands"`
}

// BuildStatsView lays out stats for display: the three headline figures and
// one row per canonical band. Bands outside the canonical five stay in
// stats.BandCounts but get no row.
func BuildStatsView(stats AggregateStats, sourceLabel string) StatsView {
	view := StatsView{
		Empty:             stats.Total == 0,
		Total:             stats.Total,
		MaxMagnitudeLabel: fmt.Sprintf("%.1f", stats.MaxMagnitude),
		SourceLabel:       sourceLabel,
		Bands:             make([]BandRow, 0, len(canonicalBands)),
	}

	for _, band := range canonicalBands {
		count := stats.Count(string(band))
		pct := percentOf(count, stats.Total)
		view.Bands = append(view.Bands, BandRow{
			Band:         band,
			Label:        band.Label(),
			Count:        count,
			Percent:      pct,
			PercentLabel: fmt.Sprintf("%.0f%%", pct),
			BarWidth:     math.Min(pct, 100),
		})
	}

	return view
}

func percentOf(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
