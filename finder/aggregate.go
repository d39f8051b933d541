// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahayak-in/sahayak/spatial"
	"github.com/uber/h3-go/v4"
	"golang.org/x/time/rate"
)

// ProgressFunc is called after each category completes, with the name
// of the category that just finished.
type ProgressFunc func(done, total int, category string)

// Warning records one category that contributed zero places because
// its fetch failed.
type Warning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AggregateMetrics tracks statistics across searches.
type AggregateMetrics struct {
	CategoriesOk     int
	CategoriesFailed int
	RecordsSeen      int
	RecordsDropped   int
	CacheHits        int
}

// Merge combines the metrics from another instance into this one.
func (m *AggregateMetrics) Merge(o *AggregateMetrics) *AggregateMetrics {
	m.CategoriesOk += o.CategoriesOk
	m.CategoriesFailed += o.CategoriesFailed
	m.RecordsSeen += o.RecordsSeen
	m.RecordsDropped += o.RecordsDropped
	m.CacheHits += o.CacheHits

	return m
}

// ResultSet is the unified outcome of one search: places across all
// requested categories, sorted ascending by distance.
type ResultSet struct {
	Origin   SearchOrigin `json:"origin"`
	RadiusKm float64      `json:"radius_km"`
	Places   []Place      `json:"places"`
	Warnings []Warning    `json:"warnings,omitempty"`
}

// Empty reports whether the search produced no places. A valid
// terminal state, not an error: the caller should suggest widening the
// radius or the category selection.
func (rs *ResultSet) Empty() bool {
	return len(rs.Places) == 0
}

// Categories returns the distinct category names present, in first-seen order.
func (rs *ResultSet) Categories() []string {
	seen := make(map[string]bool)

	var names []string

	for _, p := range rs.Places {
		if !seen[p.Category] {
			seen[p.Category] = true

			names = append(names, p.Category)
		}
	}

	return names
}

// NearestKm returns the distance of the closest place.
func (rs *ResultSet) NearestKm() float64 {
	if len(rs.Places) == 0 {
		return 0
	}

	return rs.Places[0].DistanceKm
}

// AggregatorOptions configuration for Aggregator.
type AggregatorOptions struct {
	// Limiter spaces successive Overpass requests; nil installs the
	// default 2 req/s limiter (0.5s between categories)
	Limiter *rate.Limiter

	// CacheTTL bounds result memoization
	CacheTTL time.Duration

	// Clock drives cache expiry; nil means time.Now
	Clock Clock

	// Progress is notified after each category completes
	Progress ProgressFunc
}

const (
	defaultResultCacheTTL = 30 * time.Minute

	// originCellResolution quantizes the origin for cache keys.
	// H3 resolution 9 cells average ~174m across, well under any
	// meaningful radius change.
	originCellResolution = 9
)

// Aggregator drives the per-category pipeline: build the query, fetch
// raw records, normalize them, merge, sort. Results are memoized by
// (origin cell, radius, category set).
type Aggregator struct {
	fetcher  Fetcher
	limiter  *rate.Limiter
	cache    *TTLCache
	progress ProgressFunc

	mu      sync.Mutex // guards metrics; Search runs from concurrent server handlers
	metrics AggregateMetrics
}

// Metrics returns a snapshot of the accumulated statistics.
func (a *Aggregator) Metrics() AggregateMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.metrics
}

// NewAggregator creates an aggregator over the given fetcher.
func NewAggregator(fetcher Fetcher, options *AggregatorOptions) *Aggregator {
	if options == nil {
		options = &AggregatorOptions{}
	}

	limiter := options.Limiter
	if limiter == nil {
		// Overpass has no hard client quota but asks for restraint;
		// one request every 0.5s keeps us polite.
		limiter = rate.NewLimiter(rate.Every(500*time.Millisecond), 1)
	}

	ttl := options.CacheTTL
	if ttl == 0 {
		ttl = defaultResultCacheTTL
	}

	return &Aggregator{
		fetcher:  fetcher,
		limiter:  limiter,
		cache:    NewTTLCache(ttl, options.Clock),
		progress: options.Progress,
	}
}

// cacheKey quantizes the origin to an H3 cell and joins it with the
// radius and the canonical category set.
func cacheKey(origin spatial.Point, radiusKm float64, selected []Category) string {
	names := make([]string, 0, len(selected))
	for _, c := range selected {
		names = append(names, c.Name)
	}

	cellKey := fmt.Sprintf("%.4f,%.4f", origin.Lat, origin.Lng)

	cell, err := h3.LatLngToCell(h3.NewLatLng(origin.Lat, origin.Lng), originCellResolution)
	if err == nil {
		cellKey = cell.String()
	}

	return fmt.Sprintf("%s|%g|%s", cellKey, radiusKm, strings.Join(names, ","))
}

// Search runs the pipeline for the requested categories around origin.
// Per-category fetch failures degrade to warnings; only context
// cancellation aborts. An empty selection returns an empty ResultSet
// without touching the network.
func (a *Aggregator) Search(ctx context.Context, origin SearchOrigin, radiusKm float64, categoryNames []string) (*ResultSet, error) {
	selected, unknown := Select(categoryNames)
	for _, name := range unknown {
		log.Printf("Search - Ignoring unknown category %q", name)
	}

	rs := &ResultSet{
		Origin:   origin,
		RadiusKm: radiusKm,
		Places:   []Place{},
	}

	if len(selected) == 0 {
		return rs, nil
	}

	key := cacheKey(origin.Point, radiusKm, selected)
	if val, found := a.cache.Get(key); found {
		a.mu.Lock()
		a.metrics.CacheHits++
		a.mu.Unlock()

		return val.(*ResultSet), nil
	}

	metrics := AggregateMetrics{}
	total := len(selected)

	for i, category := range selected {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search canceled: %w", err)
		}

		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search canceled: %w", err)
		}

		records, err := a.fetcher.Fetch(ctx, origin.Point, radiusKm, category)
		if err != nil {
			metrics.CategoriesFailed++

			rs.Warnings = append(rs.Warnings, Warning{
				Category: category.Name,
				Message:  err.Error(),
			})
			log.Printf("Search - %s failed: %s", category.Name, err)
		} else {
			metrics.CategoriesOk++
			metrics.RecordsSeen += len(records)

			for _, rec := range records {
				place, ok := Normalize(rec, origin.Point, category)
				if !ok {
					metrics.RecordsDropped++

					continue
				}

				rs.Places = append(rs.Places, place)
			}
		}

		if a.progress != nil {
			a.progress(i+1, total, category.Name)
		}
	}

	// Stable keeps category/insertion order among equal distances.
	sort.SliceStable(rs.Places, func(i, j int) bool {
		return rs.Places[i].DistanceKm < rs.Places[j].DistanceKm
	})

	a.mu.Lock()
	a.metrics.Merge(&metrics)
	a.mu.Unlock()

	a.cache.Set(key, rs)

	return rs, nil
}
