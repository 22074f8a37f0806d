package osmdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// countingSource records how many times the underlying fetch actually ran.
type countingSource struct {
	cities []City
	calls  int
}

func (s *countingSource) FetchCities(ctx context.Context, region string, minPopulation float64) ([]City, error) {
	s.calls++
	return s.cities, nil
}

func openTestDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "cache.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCityCacheRoundTrip(t *testing.T) {
	cache, err := NewCityCache(openTestDB(t))
	require.NoError(t, err)

	cities := []City{
		{Name: "Potenza", Lat: 40.6401, Lon: 15.8056, Population: 67122},
		{Name: "Matera", Lat: 40.6664, Lon: 16.6043, Population: 60403},
	}

	_, ok, err := cache.Get("basilicata", 1000)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put("basilicata", 1000, cities))

	got, ok, err := cache.Get("basilicata", 1000)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cities, got)

	// A different threshold is a different entry.
	_, ok, err = cache.Get("basilicata", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachingSource(t *testing.T) {
	cache, err := NewCityCache(openTestDB(t))
	require.NoError(t, err)

	source := &countingSource{cities: []City{{Name: "Potenza", Lat: 40.64, Lon: 15.8}}}
	caching := NewCachingSource(source, cache, zap.NewNop())
	ctx := context.Background()

	t.Run("first fetch hits the source", func(t *testing.T) {
		cities, err := caching.FetchCities(ctx, "basilicata", 0)
		require.NoError(t, err)
		assert.Len(t, cities, 1)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("second fetch is served from cache", func(t *testing.T) {
		cities, err := caching.FetchCities(ctx, "basilicata", 0)
		require.NoError(t, err)
		assert.Len(t, cities, 1)
		assert.Equal(t, 1, source.calls)
	})

	t.Run("refresh bypasses the cache", func(t *testing.T) {
		_, err := caching.RefreshCities(ctx, "basilicata", 0)
		require.NoError(t, err)
		assert.Equal(t, 2, source.calls)
	})

	t.Run("unknown region fails before touching anything", func(t *testing.T) {
		_, err := caching.FetchCities(ctx, "mordor", 0)
		assert.ErrorIs(t, err, ErrUnknownRegion)
		assert.Equal(t, 2, source.calls)
	})
}
