package domain

// QuakeRecord is one earthquake from the summary feed. Pointer fields are nil
// when the feed reports null for them.
type QuakeRecord struct {
	ID            string   `json:"id"`
	Time          int64    `json:"time"` // epoch milliseconds
	Magnitude     *float64 `json:"mag"`
	MagnitudeBand string   `json:"mag_band"`
	Place         *string  `json:"place"`
	Lat           *float64 `json:"lat"`
	Lon           *float64 `json:"lon"`
	DepthKm       *float64 `json:"depth_km"`
}

// Plottable reports whether both coordinates are present.
func (r QuakeRecord) Plottable() bool {
	return r.Lat != nil && r.Lon != nil
}

// EffectiveMagnitude returns the magnitude, or 0 when it is unknown.
// It is only used for marker sizing and coloring.
func (r QuakeRecord) EffectiveMagnitude() float64 {
	if r.Magnitude == nil {
		return 0
	}
	return *r.Magnitude
}

// BandKey returns the band label the record asserts. Records without a
// magnitude, or without a label, count as "unknown" whatever the label says.
func (r QuakeRecord) BandKey() string {
	if r.Magnitude == nil || r.MagnitudeBand == "" {
		return string(BandUnknown)
	}
	return r.MagnitudeBand
}

// Float returns a pointer to v, for building records with present values.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s.
func String(s string) *string { return &s }
