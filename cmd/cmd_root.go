// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "sahayak",
	Short: "find nearby essential services in India",
	Long: `
sahayak locates hospitals, clinics, pharmacies, police and other
essential services around any place in India, using OpenStreetMap data
(Nominatim for geocoding, the Overpass API for points of interest).
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// userAgent identifies outgoing requests, as the OSM services require.
func userAgent() string {
	return fmt.Sprintf("sahayak/%s (+https://github.com/sahayak-in/sahayak)", Version)
}
