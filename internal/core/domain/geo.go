package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84) in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether neither coordinate is NaN.
func (p GeoPoint) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// GeoBounds represents a geographic bounding box. When West > East the box
// spans the antimeridian.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Wraps reports whether the longitude range crosses ±180.
func (b GeoBounds) Wraps() bool {
	return b.East < b.West
}

// Contains reports whether p lies inside the box, edges included.
// NaN coordinates are never contained.
func (b GeoBounds) Contains(p GeoPoint) bool {
	if !p.Valid() {
		return false
	}
	withinLat := p.Lat >= b.South && p.Lat <= b.North

	var withinLon bool
	if b.East >= b.West {
		withinLon = p.Lon >= b.West && p.Lon <= b.East
	} else {
		withinLon = p.Lon >= b.West || p.Lon <= b.East
	}
	return withinLat && withinLon
}

// MapViewport is the visible map region at one moment.
type MapViewport struct {
	Center GeoPoint  `json:"center"`
	Bounds GeoBounds `json:"bounds"`
}
