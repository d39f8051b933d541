// Copyright 2025 The Sahayak Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"math"
	"strconv"

	"github.com/tidwall/geodesic"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns "lat,lng" the way map providers expect it in query strings.
func (p Point) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Valid reports whether the point lies inside the WGS-84 coordinate domain.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// GeodesicDistance solves the inverse geodesic problem on the WGS-84
// ellipsoid and returns the distance to other in kilometers.
func (p Point) GeodesicDistance(other Point) float64 {
	var meters float64

	geodesic.WGS84.Inverse(p.Lat, p.Lng, other.Lat, other.Lng, &meters, nil, nil)

	return meters / 1000
}

// HaversineDistance calculates the distance between two points on a
// spherical Earth in meters. Coarser than GeodesicDistance, good enough
// for proximity bucketing.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// MapURL returns a Google Maps link that opens on the point.
func (p Point) MapURL() string {
	return "https://www.google.com/maps/search/?api=1&query=" + p.String()
}

// DirectionsURL returns a Google Maps link with directions from origin
// to the point.
func (p Point) DirectionsURL(origin Point) string {
	return "https://www.google.com/maps/dir/?api=1&origin=" + origin.String() +
		"&destination=" + p.String()
}
