package domain

import (
	"math"
	"strconv"
)

// Marker colors per band.
const (
	ColorStrong   = "#ef4444" // red
	ColorModerate = "#f97316" // orange
	ColorLight    = "#eab308" // yellow
	ColorMicro    = "#22c55e" // green
)

// Marker geometry and style.
const (
	baseRadius         = 4.0
	radiusPerMagnitude = 1.2
	markerFillOpacity  = 0.85
	markerWeight       = 1
)

// Popup placeholders.
const (
	UnknownMagnitude = "?"
	UnknownPlace     = "Unknown location"
)

// Initial map views.
const (
	CloseZoom = 3
	WideZoom  = 2
)

// FallbackCenter keeps the world view roughly land-centered when nothing is plottable.
func FallbackCenter() Position {
	return Position{Lat: 0, Lon: 20}
}

// Position is a WGS-84 latitude/longitude pair in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PopupFields is the text shown when a marker is opened.
type PopupFields struct {
	Magnitude string   `json:"magnitude"`
	Place     string   `json:"place"`
	Band      string   `json:"band"`
	DepthKm   *float64 `json:"depth_km,omitempty"`
}

// MarkerDescriptor is everything a map renderer needs to draw one quake.
type MarkerDescriptor struct {
	ID          string      `json:"id"`
	Position    Position    `json:"position"`
	Radius      float64     `json:"radius"`
	Color       string      `json:"color"`
	FillColor   string      `json:"fill_color"`
	FillOpacity float64     `json:"fill_opacity"`
	Weight      int         `json:"weight"`
	Popup       PopupFields `json:"popup"`
}

// View is the map's initial center and zoom level.
type View struct {
	Center Position `json:"center"`
	Zoom   int      `json:"zoom"`
}

// BuildMarkers encodes every plottable record as a marker, in input order.
// Records missing either coordinate are dropped. Duplicate ids pass through.
func BuildMarkers(records []QuakeRecord) []MarkerDescriptor {
	markers := make([]MarkerDescriptor, 0, len(records))
	for _, r := range records {
		if !r.Plottable() {
			continue
		}
		markers = append(markers, encodeMarker(r))
	}
	return markers
}

func encodeMarker(r QuakeRecord) MarkerDescriptor {
	m := r.EffectiveMagnitude()
	color := MagnitudeColor(m)
	return MarkerDescriptor{
		ID:          r.ID,
		Position:    Position{Lat: *r.Lat, Lon: *r.Lon},
		Radius:      MarkerRadius(m),
		Color:       color,
		FillColor:   color,
		FillOpacity: markerFillOpacity,
		Weight:      markerWeight,
		Popup:       popupFor(r),
	}
}

// MarkerRadius scales linearly with magnitude; magnitude 0 gives the base radius.
// The result stays finite: overflow saturates at ±math.MaxFloat64.
func MarkerRadius(m float64) float64 {
	r := baseRadius + m*radiusPerMagnitude
	switch {
	case math.IsInf(r, 1):
		return math.MaxFloat64
	case math.IsInf(r, -1):
		return -math.MaxFloat64
	}
	return r
}

// MagnitudeColor returns the marker color for the band m falls in.
func MagnitudeColor(m float64) string {
	switch BandForMagnitude(m) {
	case BandStrong:
		return ColorStrong
	case BandModerate:
		return ColorModerate
	case BandLight:
		return ColorLight
	default:
		return ColorMicro
	}
}

func popupFor(r QuakeRecord) PopupFields {
	p := PopupFields{
		Magnitude: UnknownMagnitude,
		Place:     UnknownPlace,
		Band:      r.MagnitudeBand,
		DepthKm:   r.DepthKm,
	}
	if r.Magnitude != nil {
		p.Magnitude = strconv.FormatFloat(*r.Magnitude, 'f', -1, 64)
	}
	if r.Place != nil {
		p.Place = *r.Place
	}
	return p
}

// ChooseInitialView centers on the first plottable record at close zoom, or
// on FallbackCenter at wide zoom when nothing is plottable. It is a first-match
// heuristic, not a centroid.
func ChooseInitialView(records []QuakeRecord) View {
	for _, r := range records {
		if r.Plottable() {
			return View{Center: Position{Lat: *r.Lat, Lon: *r.Lon}, Zoom: CloseZoom}
		}
	}
	return View{Center: FallbackCenter(), Zoom: WideZoom}
}
