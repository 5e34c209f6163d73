package geospatial

import "math"

// EarthRadiusMeters is the mean Earth radius used for every distance.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
// The longitude delta is wrapped so the short way around the antimeridian is used.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(WrapLongitude(lon2 - lon1))

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinLon*sinLon

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// WrapLongitude folds a longitude (or longitude delta) into [-180, 180].
func WrapLongitude(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	for deg < -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
// Latitudes are clamped to the poles and longitudes wrapped, so a box crossing
// the antimeridian comes back with minLon > maxLon.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	minLat = math.Max(lat-latDelta, -90)
	maxLat = math.Min(lat+latDelta, 90)
	if math.IsInf(lonDelta, 0) || lonDelta >= 180 || math.IsNaN(lonDelta) {
		return minLat, -180, maxLat, 180
	}
	return minLat, WrapLongitude(lon - lonDelta), maxLat, WrapLongitude(lon + lonDelta)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
