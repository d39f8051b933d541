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
	"strconv"
	"strings"
	"time"

	"github.com/sahayak-in/sahayak/spatial"
	"github.com/sahayak-in/sahayak/utils/httputils"
	"golang.org/x/time/rate"
)

// SearchOrigin is the resolved starting point of one search: the
// coordinate, the free-text name that produced it, and the display
// address the geocoder resolved it to.
type SearchOrigin struct {
	Point       spatial.Point `json:"point"`
	PlaceName   string        `json:"place_name"`
	DisplayName string        `json:"display_name"`
}

// Geocoder resolves a free-text place name to a SearchOrigin.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*SearchOrigin, error)
}

// GeocoderOptions configuration for NominatimGeocoder.
type GeocoderOptions struct {
	// BaseURL overrides the Nominatim endpoint, mainly for tests
	BaseURL string

	// UserAgent identifies this client to the service; Nominatim
	// rejects anonymous clients
	UserAgent string

	// Timeout for one geocoding call
	Timeout time.Duration

	// CacheTTL bounds how long a resolution is reused
	CacheTTL time.Duration

	// Clock drives cache expiry; nil means time.Now
	Clock Clock

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool
}

// NominatimGeocoder resolves place names through the OSM Nominatim
// search endpoint, scoped to India. Resolutions are memoized.
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *TTLCache
}

const (
	defaultNominatimURL     = "https://nominatim.openstreetmap.org"
	defaultGeocodeTimeout   = 10 * time.Second
	defaultGeocodeCacheTTL  = 60 * time.Minute
	defaultGeocodeRateLimit = rate.Limit(1) // Nominatim usage policy: 1 req/s
)

// NewNominatimGeocoder creates a geocoder with the provided options.
func NewNominatimGeocoder(options *GeocoderOptions) *NominatimGeocoder {
	if options == nil {
		options = &GeocoderOptions{}
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = defaultGeocodeTimeout
	}

	ttl := options.CacheTTL
	if ttl == 0 {
		ttl = defaultGeocodeCacheTTL
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
			Writer: httpLogWriter,
		},
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(defaultGeocodeRateLimit, 1),
		cache:   NewTTLCache(ttl, options.Clock),
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves place to coordinates, appending ", India" to scope
// results. A cached resolution is reused within the cache TTL.
func (g *NominatimGeocoder) Geocode(ctx context.Context, place string) (*SearchOrigin, error) {
	key := strings.ToLower(strings.Join(strings.Fields(place), " "))
	if val, found := g.cache.Get(key); found {
		return val.(*SearchOrigin), nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, geocodeFailure("waiting on geocoder rate limit", err)
	}

	params := url.Values{
		"q":      {place + ", India"},
		"format": {"json"},
		"limit":  {"1"},
	}
	reqURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, geocodeFailure("creating geocoding request", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, geocodeFailure("geocoding service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, geocodeFailure(fmt.Sprintf("geocoding service returned status %d", resp.StatusCode), nil)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, geocodeFailure("decoding geocoding response", err)
	}

	if len(results) == 0 {
		return nil, geocodeFailure(fmt.Sprintf("location not found: %q", place), nil)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, geocodeFailure("parsing latitude", err)
	}

	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, geocodeFailure("parsing longitude", err)
	}

	origin := &SearchOrigin{
		Point:       spatial.Point{Lat: lat, Lng: lng},
		PlaceName:   place,
		DisplayName: results[0].DisplayName,
	}

	if !origin.Point.Valid() {
		return nil, geocodeFailure(fmt.Sprintf("geocoder returned out-of-range coordinate %s", origin.Point), nil)
	}

	g.cache.Set(key, origin)

	return origin, nil
}
