package osmdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const overpassStubBody = `{
	"elements": [
		{"lat": 40.6401, "lon": 15.8056, "tags": {"name": "Potenza", "place": "city", "population": "67122"}},
		{"lat": 40.6664, "lon": 16.6043, "tags": {"name": "Matera", "place": "city", "population": "60403"}},
		{"lat": 40.5, "lon": 15.9, "tags": {"name": "Matera", "place": "village", "population": "100"}},
		{"lat": 40.1, "lon": 16.0, "tags": {"name": "Sasso di Castalda", "place": "village", "population": "800"}},
		{"lat": 40.2, "lon": 16.1, "tags": {"name": "Borgo Senzapop", "place": "village"}},
		{"lat": 40.3, "lon": 16.2, "tags": {"place": "village", "population": "5000"}}
	]
}`

func TestOverpassFetchCities(t *testing.T) {
	var gotUserAgent string
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(overpassStubBody))
	}))
	defer srv.Close()

	fetcher := NewOverpassFetcher(srv.URL, "tsp-test/1.0", zap.NewNop())

	t.Run("filters and sorts", func(t *testing.T) {
		cities, err := fetcher.FetchCities(context.Background(), "basilicata", 1000)
		require.NoError(t, err)

		// Unnamed node dropped, sub-threshold places dropped, duplicate
		// Matera keeps the first occurrence, names sorted.
		require.Len(t, cities, 2)
		assert.Equal(t, "Matera", cities[0].Name)
		assert.Equal(t, 60403.0, cities[0].Population)
		assert.Equal(t, "Potenza", cities[1].Name)

		assert.Equal(t, "tsp-test/1.0", gotUserAgent)
		assert.Contains(t, gotQuery, `"Basilicata"`)
		assert.Contains(t, gotQuery, "admin_level")
	})

	t.Run("zero threshold keeps untagged population", func(t *testing.T) {
		cities, err := fetcher.FetchCities(context.Background(), "basilicata", 0)
		require.NoError(t, err)
		require.Len(t, cities, 4)
		assert.Equal(t, "Borgo Senzapop", cities[0].Name)
		assert.Equal(t, 0.0, cities[0].Population)
	})

	t.Run("unknown region", func(t *testing.T) {
		_, err := fetcher.FetchCities(context.Background(), "padania", 0)
		assert.ErrorIs(t, err, ErrUnknownRegion)
	})

	t.Run("nothing above threshold", func(t *testing.T) {
		_, err := fetcher.FetchCities(context.Background(), "basilicata", 1e9)
		assert.ErrorIs(t, err, ErrNoCities)
	})
}

func TestOverpassServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	fetcher := NewOverpassFetcher(srv.URL, "", zap.NewNop())
	_, err := fetcher.FetchCities(context.Background(), "lazio", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRegionName(t *testing.T) {
	name, err := RegionName("Trentino-Alto-Adige")
	require.NoError(t, err)
	assert.Equal(t, "Trentino-Alto Adige/Südtirol", name)

	_, err = RegionName("atlantis")
	assert.ErrorIs(t, err, ErrUnknownRegion)

	assert.Len(t, RegionCodes(), 20)
	assert.Equal(t, "abruzzo", RegionCodes()[0])
}
