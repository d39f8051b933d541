// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sahayak-in/sahayak/finder"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	RadiusKm            float64
	Categories          []string
	CSVPath             string
	TextPath            string
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

var searchOpts = &searchOptions{}

var searchCmd = &cobra.Command{
	Use:   "search <place>",
	Short: "Find services around a place",
	Long: `
Geocodes the place name (scoped to India), queries the Overpass API for
each selected category within the radius, and prints the results sorted
by distance. Optionally exports them as CSV or plain text.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		place := strings.Join(args, " ")

		if len(searchOpts.Categories) == 0 {
			searchOpts.Categories = finder.CategoryNames()
		}

		geocoder := finder.NewNominatimGeocoder(&finder.GeocoderOptions{
			UserAgent:       userAgent(),
			EnableHTTPTrace: searchOpts.EnableHTTPTrace,
		})

		log.Printf("Search - Resolving %q", place)

		origin, err := geocoder.Geocode(cmd.Context(), place)
		if err != nil {
			if finder.IsGeocodeFailure(err) {
				return fmt.Errorf("location not found - try \"Area, City\": %w", err)
			}

			return err
		}

		log.Printf("Search - Found %s", origin.DisplayName)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(searchOpts.Categories),
				progressbar.OptionSetDescription("Searching"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		fetcher := finder.NewOverpassClient(&finder.OverpassOptions{
			UserAgent:           userAgent(),
			EnableHTTPTrace:     searchOpts.EnableHTTPTrace,
			EnableHTTPBodyTrace: searchOpts.EnableHTTPBodyTrace,
		})

		aggregator := finder.NewAggregator(fetcher, &finder.AggregatorOptions{
			Progress: func(done, _ int, category string) {
				if bar != nil {
					bar.Describe("Searching " + category)
					_ = bar.Set(done)
				}
			},
		})

		rs, err := aggregator.Search(cmd.Context(), *origin, searchOpts.RadiusKm, searchOpts.Categories)
		if err != nil {
			return err
		}

		if bar != nil {
			_ = bar.Finish()
		}

		printResults(rs)

		if searchOpts.CSVPath != "" {
			if err := exportFile(searchOpts.CSVPath, rs, finder.WriteCSV); err != nil {
				return fmt.Errorf("exporting CSV: %w", err)
			}

			log.Printf("Search - Wrote %s", searchOpts.CSVPath)
		}

		if searchOpts.TextPath != "" {
			if err := exportFile(searchOpts.TextPath, rs, finder.WriteText); err != nil {
				return fmt.Errorf("exporting text: %w", err)
			}

			log.Printf("Search - Wrote %s", searchOpts.TextPath)
		}

		return nil
	},
}

func exportFile(path string, rs *finder.ResultSet, write func(w io.Writer, rs *finder.ResultSet) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	return write(f, rs)
}

func printResults(rs *finder.ResultSet) {
	for _, w := range rs.Warnings {
		log.Printf("Search - Warning - %s: %s", w.Category, w.Message)
	}

	if rs.Empty() {
		fmt.Println("No results found. Try increasing the radius or selecting more categories.")

		return
	}

	a, b, c, d := strings.Repeat("─", 38), strings.Repeat("─", 14), strings.Repeat("─", 8), strings.Repeat("─", 16)
	fmt.Printf("╭─%-38s─┬─%-14s─┬─%-8s─┬─%-16s╮\n", a, b, c, d)
	fmt.Printf("│ %-38s │ %-14s │ %8s │ %-16s│\n", "Name", "Category", "Km", "Phone")
	fmt.Printf("├─%-38s─┼─%-14s─┼─%-8s─┼─%-16s┤\n", a, b, c, d)

	for _, p := range rs.Places {
		fmt.Printf("│ %-38s │ %-14s │ %8.2f │ %-16s│\n",
			clip(p.Name, 38), clip(p.Category, 14), p.DistanceKm, clip(p.Phone, 16))
	}

	fmt.Printf("╰─%-38s─┴─%-14s─┴─%-8s─┴─%-16s╯\n", a, b, c, d)
	fmt.Printf(
		"%d results across %d categories, nearest %.2f km, within %g km of %s\n",
		len(rs.Places), len(rs.Categories()), rs.NearestKm(), rs.RadiusKm, rs.Origin.DisplayName,
	)
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n-1]) + "…"
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Float64Var(
		&searchOpts.RadiusKm,
		"radius",
		10,
		"Search radius in kilometers",
	)
	searchCmd.Flags().StringArrayVar(
		&searchOpts.Categories,
		"category",
		nil,
		"Category to search (repeatable); defaults to all",
	)
	searchCmd.Flags().StringVar(
		&searchOpts.CSVPath,
		"csv",
		"",
		"Write the results as CSV to this file",
	)
	searchCmd.Flags().StringVar(
		&searchOpts.TextPath,
		"txt",
		"",
		"Write the results as plain text to this file",
	)
	searchCmd.Flags().BoolVar(
		&searchOpts.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	searchCmd.Flags().BoolVar(
		&searchOpts.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
