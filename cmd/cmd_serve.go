// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/sahayak-in/sahayak/finder"
	"github.com/spf13/cobra"
)

var serveListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		geocoder := finder.NewNominatimGeocoder(&finder.GeocoderOptions{
			UserAgent: userAgent(),
		})

		fetcher := finder.NewOverpassClient(&finder.OverpassOptions{
			UserAgent: userAgent(),
		})

		aggregator := finder.NewAggregator(fetcher, nil)

		log.Printf("Serve - Listening on %s", serveListenAddr)

		return finder.NewServer(geocoder, aggregator).Run(serveListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveListenAddr,
		"listen",
		":8080",
		"Address to listen on",
	)
}
