// Package domain models earthquake summary records and the pure computations
// the dashboard runs over one fetched snapshot of them.
//
// # Data Source
//
// Records come from the quake API's /earthquakes/summary endpoint, itself a
// flattened view of the USGS hourly GeoJSON feed. Each element looks like:
//
//	{"id":"us7000abcd","time":1714137000000,"mag":4.7,"mag_band":"moderate",
//	 "place":"12 km SSW of Hualien City, Taiwan","lat":23.9,"lon":121.5,"depth_km":10}
//
// Every field except id and time may be null. A null magnitude means the
// magnitude is unknown, which is not the same thing as magnitude 0.
//
// # Magnitude Bands
//
// Bands are assigned upstream and trusted as-is by [ComputeStats]:
//
//	micro     m < 2.5
//	light     2.5 <= m < 4.5
//	moderate  4.5 <= m < 6.0
//	strong    m >= 6.0
//	unknown   magnitude absent (or no band supplied)
//
// [BuildMarkers] colors markers from the numeric magnitude using the same
// thresholds via [BandForMagnitude], so a mislabelled record may be counted
// under one band and drawn in another color. The two are never reconciled.
//
// # Known Edge Cases
//
// The max-magnitude fold starts at 0, so a snapshot holding only negative
// magnitudes reports a maximum of 0. Duplicate ids are passed through.
package domain
