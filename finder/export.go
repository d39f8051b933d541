// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// csvHeader matches the column order of the tabular export, one row
// per place.
var csvHeader = []string{
	"Name", "Type", "Distance_km", "Address", "Phone", "Hours",
	"Latitude", "Longitude", "Google_Maps", "Directions",
}

// WriteCSV writes the result set as CSV, one row per place.
func WriteCSV(w io.Writer, rs *ResultSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, p := range rs.Places {
		row := []string{
			p.Name,
			p.Category,
			strconv.FormatFloat(p.DistanceKm, 'f', -1, 64),
			p.Address,
			p.Phone,
			p.Hours,
			strconv.FormatFloat(p.Point.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Point.Lng, 'f', -1, 64),
			p.MapURL,
			p.DirectionsURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// textExportLimit caps the plain-text listing.
const textExportLimit = 30

// WriteText writes a plain-text listing of up to the first 30 places.
func WriteText(w io.Writer, rs *ResultSet) error {
	if _, err := fmt.Fprintf(w, "Services near %s\n\n", rs.Origin.PlaceName); err != nil {
		return fmt.Errorf("writing text header: %w", err)
	}

	places := rs.Places
	if len(places) > textExportLimit {
		places = places[:textExportLimit]
	}

	for i, p := range places {
		_, err := fmt.Fprintf(
			w,
			"%d. %s (%s) - %g km\n   %s\n   %s\n",
			i+1, p.Name, p.Category, p.DistanceKm, p.Phone, p.MapURL,
		)
		if err != nil {
			return fmt.Errorf("writing text entry: %w", err)
		}
	}

	return nil
}
