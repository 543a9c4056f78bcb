// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in kilometers
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Clamp rounding noise so Asin never sees a value above 1
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Within reports whether b lies inside a radius (km) around a.
// The boundary is inclusive.
func Within(a, b Point, radiusKm float64) bool {
	return Distance(a, b) <= radiusKm
}

// FormatKm renders a distance with two decimals, e.g. "2.22"
func FormatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', 2, 64)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
