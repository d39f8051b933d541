// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sahayak-in/sahayak/spatial"
	"github.com/sahayak-in/sahayak/utils/httputils"
)

// RawRecord is one element as returned by the Overpass API: an opaque
// tag map plus either a direct coordinate (nodes) or a centroid (ways
// and relations). Consumed immediately by Normalize, never persisted.
type RawRecord struct {
	Type   string     `json:"type"`
	Lat    *float64   `json:"lat,omitempty"`
	Lon    *float64   `json:"lon,omitempty"`
	Center *RawCenter `json:"center,omitempty"`
	Tags   TagMap     `json:"tags,omitempty"`
}

// RawCenter is the centroid Overpass computes for area features.
type RawCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point returns the record's position: the direct coordinate when
// present, otherwise the centroid. ok is false when neither exists.
func (r *RawRecord) Point() (spatial.Point, bool) {
	if r.Lat != nil && r.Lon != nil {
		return spatial.Point{Lat: *r.Lat, Lng: *r.Lon}, true
	}

	if r.Center != nil {
		return spatial.Point{Lat: r.Center.Lat, Lng: r.Center.Lon}, true
	}

	return spatial.Point{}, false
}

// Fetcher retrieves the raw records of one category around an origin.
type Fetcher interface {
	Fetch(ctx context.Context, origin spatial.Point, radiusKm float64, category Category) ([]RawRecord, error)
}

// OverpassOptions configuration for OverpassClient.
type OverpassOptions struct {
	// BaseURL overrides the Overpass endpoint, mainly for tests
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout for one category request (client side)
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

const (
	defaultOverpassURL     = "https://overpass-api.de/api/interpreter"
	defaultOverpassTimeout = 35 * time.Second

	// serverTimeoutSec is the query timeout Overpass enforces on its side.
	serverTimeoutSec = 30

	// maxResultsPerCategory caps one category's response size.
	maxResultsPerCategory = 200
)

// OverpassClient fetches points of interest from the Overpass API,
// one HTTP request per category.
type OverpassClient struct {
	baseURL string
	client  *http.Client
}

// NewOverpassClient creates a client with the provided options.
func NewOverpassClient(options *OverpassOptions) *OverpassClient {
	if options == nil {
		options = &OverpassOptions{}
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultOverpassURL
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = defaultOverpassTimeout
	}

	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = "sahayak/unknown"
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: &httputils.LoggingRoundTripper{
			Writer:   httpLogWriter,
			DumpBody: options.EnableHTTPBodyTrace,
		},
	}

	return &OverpassClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// BuildQuery renders the Overpass QL query for one category: node, way
// and relation features within radiusKm of origin, with centroids for
// area features, capped at maxResultsPerCategory elements.
func BuildQuery(origin spatial.Point, radiusKm float64, filter string) string {
	radiusM := radiusKm * 1000

	return fmt.Sprintf(
		"[out:json][timeout:%d];\n(\n"+
			"  node(around:%.0f,%s)%s;\n"+
			"  way(around:%.0f,%s)%s;\n"+
			"  relation(around:%.0f,%s)%s;\n"+
			");\nout center %d;",
		serverTimeoutSec,
		radiusM, origin, filter,
		radiusM, origin, filter,
		radiusM, origin, filter,
		maxResultsPerCategory,
	)
}

type overpassResponse struct {
	Elements []RawRecord `json:"elements"`
}

// Fetch retrieves the raw records of one category. Any failure is
// wrapped as a category fetch failure so the caller can isolate it.
func (c *OverpassClient) Fetch(ctx context.Context, origin spatial.Point, radiusKm float64, category Category) ([]RawRecord, error) {
	query := BuildQuery(origin, radiusKm, category.Filter)

	params := url.Values{"data": {query}}
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, categoryFetchFailure(category.Name, fmt.Errorf("creating request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, categoryFetchFailure(category.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, categoryFetchFailure(category.Name, fmt.Errorf("overpass returned status %d", resp.StatusCode))
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, categoryFetchFailure(category.Name, fmt.Errorf("decoding response: %w", err))
	}

	return body.Elements, nil
}
