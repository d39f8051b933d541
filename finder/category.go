// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

// Package finder implements the place lookup pipeline: geocoding a
// place name, querying the Overpass API per service category,
// normalizing the raw elements into places, and aggregating them into
// a distance-sorted result set.
package finder

import "fmt"

// Group buckets categories the way the search form presents them.
type Group string

const (
	GroupMedical   Group = "Medical"
	GroupEmergency Group = "Emergency"
	GroupOther     Group = "Other"
)

// Category is one class of point of interest, bound to exactly one
// Overpass filter expression.
type Category struct {
	Name   string `json:"name"`
	Filter string `json:"filter"`
	Group  Group  `json:"group"`
	Color  string `json:"color"` // marker color on rendered maps
}

// The fixed category table. Order here is canonical: it decides the
// per-category processing order of every search.
var categories = []Category{
	{Name: "Hospital", Filter: "[amenity=hospital]", Group: GroupMedical, Color: "blue"},
	{Name: "Clinic", Filter: "[amenity=clinic]", Group: GroupMedical, Color: "lightblue"},
	{Name: "Pharmacy", Filter: "[amenity=pharmacy]", Group: GroupMedical, Color: "green"},
	{Name: "Doctors", Filter: "[amenity=doctors]", Group: GroupMedical, Color: "purple"},
	{Name: "Police Station", Filter: "[amenity=police]", Group: GroupEmergency, Color: "darkblue"},
	{Name: "Fire Station", Filter: "[amenity=fire_station]", Group: GroupEmergency, Color: "orange"},
	{Name: "ATM", Filter: "[amenity=atm]", Group: GroupOther, Color: "gray"},
	{Name: "Embassy", Filter: "[amenity=embassy]", Group: GroupOther, Color: "pink"},
	{Name: "Tourist Office", Filter: "[tourism=information]", Group: GroupOther, Color: "lightgreen"},
}

// Each iterates the category table in canonical order.
func Each(fn func(Category) error) error {
	for _, c := range categories {
		if err := fn(c); err != nil {
			return err
		}
	}

	return nil
}

// Find returns the category with the given name.
func Find(name string) (*Category, error) {
	for i := range categories {
		if categories[i].Name == name {
			return &categories[i], nil
		}
	}

	return nil, &FinderError{
		Type:    ErrorTypeUnknownCategory,
		Message: fmt.Sprintf("unknown category %q", name),
	}
}

// CategoryNames returns the names of the full table in canonical order.
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	return names
}

// Select filters the category table down to the requested names,
// preserving the table's canonical order regardless of input order.
// Unknown names are dropped: partial results beat a failed search.
// The second return value lists what was dropped so callers can warn.
func Select(names []string) ([]Category, []string) {
	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}

	selected := make([]Category, 0, len(names))

	for _, c := range categories {
		if requested[c.Name] {
			selected = append(selected, c)
			delete(requested, c.Name)
		}
	}

	var unknown []string
	for name := range requested {
		unknown = append(unknown, name)
	}

	return selected, unknown
}
