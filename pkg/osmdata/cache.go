package osmdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const cityCacheBucket = "cities"

// CityCache stores fetched region city lists in a bolt database so repeated
// runs do not hammer the OSM servers. Values are msgpack-encoded city slices
// keyed by region code and population threshold.
type CityCache struct {
	db *bbolt.DB
	sync.Mutex
}

func NewCityCache(db *bbolt.DB) (*CityCache, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cityCacheBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("osmdata: create cache bucket: %w", err)
	}
	return &CityCache{db: db}, nil
}

func cacheKey(region string, minPopulation float64) []byte {
	return []byte(fmt.Sprintf("%s/%.0f", region, minPopulation))
}

// Get returns the cached city list for the region/threshold pair, with ok
// false on a miss.
func (c *CityCache) Get(region string, minPopulation float64) (cities []City, ok bool, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(cityCacheBucket)).Get(cacheKey(region, minPopulation))
		if raw == nil {
			return nil
		}
		if uerr := msgpack.Unmarshal(raw, &cities); uerr != nil {
			return fmt.Errorf("osmdata: decode cached cities: %w", uerr)
		}
		ok = true
		return nil
	})
	return
}

// Put stores the city list for the region/threshold pair.
func (c *CityCache) Put(region string, minPopulation float64, cities []City) error {
	c.Lock()
	defer c.Unlock()

	raw, err := msgpack.Marshal(cities)
	if err != nil {
		return fmt.Errorf("osmdata: encode cities: %w", err)
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(cityCacheBucket)).Put(cacheKey(region, minPopulation), raw)
	})
}

// CachingSource decorates a CitySource with the on-disk cache. FetchCities
// serves from cache when possible; RefreshCities always hits the underlying
// source and rewrites the cache entry.
type CachingSource struct {
	source CitySource
	cache  *CityCache
	log    *zap.Logger
}

func NewCachingSource(source CitySource, cache *CityCache, log *zap.Logger) *CachingSource {
	return &CachingSource{source: source, cache: cache, log: log}
}

func (s *CachingSource) FetchCities(ctx context.Context, region string, minPopulation float64) ([]City, error) {
	if _, err := RegionName(region); err != nil {
		return nil, err
	}

	cities, ok, err := s.cache.Get(region, minPopulation)
	if err != nil {
		return nil, err
	}
	if ok {
		s.log.Debug("serving cities from cache",
			zap.String("region", region),
			zap.Int("count", len(cities)))
		return cities, nil
	}

	return s.RefreshCities(ctx, region, minPopulation)
}

func (s *CachingSource) RefreshCities(ctx context.Context, region string, minPopulation float64) ([]City, error) {
	cities, err := s.source.FetchCities(ctx, region, minPopulation)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(region, minPopulation, cities); err != nil {
		return nil, err
	}
	return cities, nil
}
