// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"math"
	"strings"

	"github.com/sahayak-in/sahayak/spatial"
)

// NotAvailable is the sentinel for address, phone and opening hours
// when the source carries no value. Never an empty string.
const NotAvailable = "N/A"

// TagMap is the loose key-value structure OSM elements carry. Lookups
// are total: a missing key yields the zero value, never a panic.
type TagMap map[string]string

// Get returns the value for key, or "" when absent.
func (t TagMap) Get(key string) string {
	return t[key]
}

// GetDefault returns the value for key, or def when absent or empty.
func (t TagMap) GetDefault(key, def string) string {
	if v := t[key]; v != "" {
		return v
	}

	return def
}

// firstTag returns the first non-empty value among keys, in order.
func firstTag(t TagMap, keys ...string) string {
	for _, key := range keys {
		if v := t[key]; v != "" {
			return v
		}
	}

	return ""
}

// Place is the canonical output unit of a search.
type Place struct {
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	DistanceKm    float64       `json:"distance_km"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	Hours         string        `json:"hours"`
	Point         spatial.Point `json:"point"`
	MapURL        string        `json:"map_url"`
	DirectionsURL string        `json:"directions_url"`
}

// addressKeys is the fixed assembly order of postal address components.
var addressKeys = []string{
	"addr:housenumber",
	"addr:street",
	"addr:suburb",
	"addr:city",
	"addr:state",
	"addr:postcode",
}

// resolveName derives a display name for a record. Explicit names win;
// brand and operator are next; with none of those, a name is
// synthesized from the locality. A record with no name and no locality
// carries nothing a traveler can act on, so it resolves to "".
func resolveName(tags TagMap, category Category) string {
	if name := firstTag(tags, "name", "name:en", "brand", "operator"); name != "" {
		return name
	}

	area := firstTag(tags, "addr:suburb", "addr:locality")
	city := tags.Get("addr:city")

	locality := area
	if locality == "" {
		locality = city
	}

	if locality == "" {
		return ""
	}

	return category.Name + " in " + locality
}

// assembleAddress joins the available address components in fixed
// order, falling back to the full-address tag and then the sentinel.
func assembleAddress(tags TagMap) string {
	parts := make([]string, 0, len(addressKeys))

	for _, key := range addressKeys {
		if v := tags.Get(key); v != "" {
			parts = append(parts, v)
		}
	}

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}

	return tags.GetDefault("addr:full", NotAvailable)
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Normalize converts one raw record into a Place. ok is false when the
// record is dropped: no resolvable name or no resolvable position.
func Normalize(rec RawRecord, origin spatial.Point, category Category) (Place, bool) {
	name := resolveName(rec.Tags, category)
	if name == "" {
		return Place{}, false
	}

	point, ok := rec.Point()
	if !ok {
		return Place{}, false
	}

	phone := firstTag(rec.Tags, "phone", "contact:phone")
	if phone == "" {
		phone = NotAvailable
	}

	return Place{
		Name:          name,
		Category:      category.Name,
		DistanceKm:    round2(origin.GeodesicDistance(point)),
		Address:       assembleAddress(rec.Tags),
		Phone:         phone,
		Hours:         rec.Tags.GetDefault("opening_hours", NotAvailable),
		Point:         point,
		MapURL:        point.MapURL(),
		DirectionsURL: point.DirectionsURL(origin),
	}, true
}
