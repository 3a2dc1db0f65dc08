package domain

// MagnitudeBand is a coarse severity class derived from magnitude.
type MagnitudeBand string

const (
	BandMicro    MagnitudeBand = "micro"
	BandLight    MagnitudeBand = "light"
	BandModerate MagnitudeBand = "moderate"
	BandStrong   MagnitudeBand = "strong"
	BandUnknown  MagnitudeBand = "unknown"
)

// Band thresholds, lower bound inclusive.
const (
	lightThreshold    = 2.5
	moderateThreshold = 4.5
	strongThreshold   = 6.0
)

var canonicalBands = [...]MagnitudeBand{BandMicro, BandLight, BandModerate, BandStrong, BandUnknown}

// CanonicalBands lists the five display bands in panel order. The slice is a
// fresh copy on every call.
func CanonicalBands() []MagnitudeBand {
	bands := canonicalBands
	return bands[:]
}

var bandLabels = map[MagnitudeBand]string{
	BandMicro:    "Micro (< 2.5)",
	BandLight:    "Light (2.5–4.5)",
	BandModerate: "Moderate (4.5–6.0)",
	BandStrong:   "Strong (≥ 6.0)",
	BandUnknown:  "Unknown",
}

// Label returns the human-readable panel label, or the raw band string for
// bands outside the canonical set.
func (b MagnitudeBand) Label() string {
	if l, ok := bandLabels[b]; ok {
		return l
	}
	return string(b)
}

// BandForMagnitude maps a numeric magnitude onto one of the four measured
// bands. Both band producers and marker coloring go through this function.
func BandForMagnitude(m float64) MagnitudeBand {
	switch {
	case m >= strongThreshold:
		return BandStrong
	case m >= moderateThreshold:
		return BandModerate
	case m >= lightThreshold:
		return BandLight
	default:
		return BandMicro
	}
}

// classifyMagnitude is BandForMagnitude for an optional magnitude; nil yields
// BandUnknown.
func classifyMagnitude(m *float64) MagnitudeBand {
	if m == nil {
		return BandUnknown
	}
	return BandForMagnitude(*m)
}
