// Copyright 2025 The Sahayak Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sahayak-in/sahayak/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// stubFetcher serves canned records per category and counts calls.
type stubFetcher struct {
	records map[string][]RawRecord
	fail    map[string]error
	calls   atomic.Int32
}

func (f *stubFetcher) Fetch(_ context.Context, _ spatial.Point, _ float64, category Category) ([]RawRecord, error) {
	f.calls.Add(1)

	if err, ok := f.fail[category.Name]; ok {
		return nil, categoryFetchFailure(category.Name, err)
	}

	return f.records[category.Name], nil
}

func noDelay() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

var testOrigin = SearchOrigin{
	Point:       spatial.Point{Lat: 28.6315, Lng: 77.2167},
	PlaceName:   "Connaught Place Delhi",
	DisplayName: "Connaught Place, New Delhi, Delhi, India",
}

func node(lat, lng float64, tags TagMap) RawRecord {
	return RawRecord{Type: "node", Lat: &lat, Lon: &lng, Tags: tags}
}

func TestSearchSortsByDistance(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {
				node(28.5672, 77.2100, TagMap{"name": "AIIMS"}),
				node(28.6290, 77.2180, TagMap{"name": "Near Hospital"}),
			},
			"Pharmacy": {
				node(28.6000, 77.2100, TagMap{"name": "Mid Pharmacy"}),
			},
		},
	}

	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, []string{"Pharmacy", "Hospital"})
	require.NoError(t, err)
	require.Len(t, rs.Places, 3)

	assert.Equal(t, "Near Hospital", rs.Places[0].Name)
	assert.Equal(t, "Mid Pharmacy", rs.Places[1].Name)
	assert.Equal(t, "AIIMS", rs.Places[2].Name)

	for i := 1; i < len(rs.Places); i++ {
		assert.LessOrEqual(t, rs.Places[i-1].DistanceKm, rs.Places[i].DistanceKm)
	}
}

func TestSearchOnlySelectedCategories(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.6, 77.2, TagMap{"name": "H"})},
			"ATM":      {node(28.6, 77.2, TagMap{"name": "A"})},
		},
	}

	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	for _, p := range rs.Places {
		assert.Equal(t, "Hospital", p.Category)
	}

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestSearchIsolatesCategoryFailure(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.5672, 77.21, TagMap{"name": "AIIMS"})},
		},
		fail: map[string]error{
			"Fire Station": errors.New("context deadline exceeded"),
		},
	}

	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital", "Fire Station"})
	require.NoError(t, err)

	require.Len(t, rs.Places, 1)
	assert.Equal(t, "AIIMS", rs.Places[0].Name)

	require.Len(t, rs.Warnings, 1)
	assert.Equal(t, "Fire Station", rs.Warnings[0].Category)

	assert.Equal(t, 1, a.Metrics().CategoriesOk)
	assert.Equal(t, 1, a.Metrics().CategoriesFailed)
}

func TestSearchEmptySelection(t *testing.T) {
	fetcher := &stubFetcher{}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, nil)
	require.NoError(t, err)

	assert.True(t, rs.Empty())
	assert.Equal(t, int32(0), fetcher.calls.Load(), "empty selection must not touch the network")
}

func TestSearchUnknownCategoriesDropped(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.6, 77.2, TagMap{"name": "H"})},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital", "Carwash"})
	require.NoError(t, err)
	require.Len(t, rs.Places, 1)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestSearchMemoizes(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.5672, 77.21, TagMap{"name": "AIIMS"})},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	first, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	second, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetcher.calls.Load(), "second identical search must be served from cache")
	assert.Equal(t, 1, a.Metrics().CacheHits)
}

func TestSearchCacheIgnoresSelectionOrder(t *testing.T) {
	fetcher := &stubFetcher{}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	_, err := a.Search(context.Background(), testOrigin, 10, []string{"Pharmacy", "Hospital"})
	require.NoError(t, err)

	_, err = a.Search(context.Background(), testOrigin, 10, []string{"Hospital", "Pharmacy"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetcher.calls.Load(), "same set in a different order hits the cache")
	assert.Equal(t, 1, a.Metrics().CacheHits)
}

func TestSearchCacheKeyedByRadius(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.5672, 77.21, TagMap{"name": "AIIMS"})},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	_, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	_, err = a.Search(context.Background(), testOrigin, 20, []string{"Hospital"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestSearchCacheExpires(t *testing.T) {
	clock := newFakeClock()
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.5672, 77.21, TagMap{"name": "AIIMS"})},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{
		Limiter:  noDelay(),
		CacheTTL: 30 * time.Minute,
		Clock:    clock.Now,
	})

	_, err := a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)

	_, err = a.Search(context.Background(), testOrigin, 10, []string{"Hospital"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestSearchEmitsProgressPerCategory(t *testing.T) {
	fetcher := &stubFetcher{
		fail: map[string]error{"Embassy": errors.New("boom")},
	}

	type tick struct {
		done, total int
		category    string
	}

	var ticks []tick

	a := NewAggregator(fetcher, &AggregatorOptions{
		Limiter: noDelay(),
		Progress: func(done, total int, category string) {
			ticks = append(ticks, tick{done, total, category})
		},
	})

	_, err := a.Search(context.Background(), testOrigin, 5, []string{"ATM", "Embassy"})
	require.NoError(t, err)

	// progress fires after every category, failures included,
	// in canonical order
	require.Len(t, ticks, 2)
	assert.Equal(t, tick{1, 2, "ATM"}, ticks[0])
	assert.Equal(t, tick{2, 2, "Embassy"}, ticks[1])
}

func TestSearchCanceledBetweenCategories(t *testing.T) {
	fetcher := &stubFetcher{}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Search(ctx, testOrigin, 10, []string{"Hospital"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestSearchDropsUnusableRecords(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Clinic": {
				node(28.6, 77.2, TagMap{"name": "Good Clinic"}),
				node(28.6, 77.2, TagMap{"amenity": "clinic"}),       // nameless, no locality
				{Type: "relation", Tags: TagMap{"name": "No Geom"}}, // positionless
			},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	rs, err := a.Search(context.Background(), testOrigin, 10, []string{"Clinic"})
	require.NoError(t, err)

	require.Len(t, rs.Places, 1)
	assert.Equal(t, "Good Clinic", rs.Places[0].Name)
	assert.Equal(t, 3, a.Metrics().RecordsSeen)
	assert.Equal(t, 2, a.Metrics().RecordsDropped)
}

func TestSearchConcurrent(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[string][]RawRecord{
			"Hospital": {node(28.5672, 77.21, TagMap{"name": "AIIMS"})},
		},
	}
	a := NewAggregator(fetcher, &AggregatorOptions{Limiter: noDelay()})

	// one Aggregator is shared by every request handler, so Search and
	// Metrics must tolerate parallel callers
	const searches = 32

	run := func() {
		var wg sync.WaitGroup

		for i := 0; i < searches; i++ {
			wg.Add(1)

			go func(radiusKm float64) {
				defer wg.Done()

				rs, err := a.Search(context.Background(), testOrigin, radiusKm, []string{"Hospital"})
				assert.NoError(t, err)
				assert.Len(t, rs.Places, 1)
			}(float64(i + 1))
		}

		wg.Wait()
	}

	// first wave: distinct radii, every search fetches
	run()
	assert.Equal(t, searches, a.Metrics().CategoriesOk)
	assert.Equal(t, int32(searches), fetcher.calls.Load())

	// second wave repeats the same radii and is served from cache
	run()
	assert.Equal(t, searches, a.Metrics().CacheHits)
	assert.Equal(t, int32(searches), fetcher.calls.Load())
}

func TestAggregateMetricsMerge(t *testing.T) {
	m := &AggregateMetrics{CategoriesOk: 1, RecordsSeen: 5}
	m.Merge(&AggregateMetrics{CategoriesOk: 2, CategoriesFailed: 1, RecordsDropped: 3})

	assert.Equal(t, 3, m.CategoriesOk)
	assert.Equal(t, 1, m.CategoriesFailed)
	assert.Equal(t, 5, m.RecordsSeen)
	assert.Equal(t, 3, m.RecordsDropped)
}
