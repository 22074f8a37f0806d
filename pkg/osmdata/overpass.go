package osmdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultOverpassEndpoint is the public Overpass API interpreter.
	DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

	// DefaultUserAgent identifies this application to the OSM servers, as
	// required by their usage policy.
	DefaultUserAgent = "ItalianRegionsTSP/1.0"

	overpassTimeout = 60 * time.Second
)

// OverpassFetcher loads the populated places of an Italian region from the
// Overpass API. Population filtering happens client-side: Overpass returns
// the place nodes of the region and the fetcher drops the ones below the
// threshold (and places with duplicate names, keeping the first).
type OverpassFetcher struct {
	client    *http.Client
	endpoint  string
	userAgent string
	log       *zap.Logger
}

func NewOverpassFetcher(endpoint, userAgent string, log *zap.Logger) *OverpassFetcher {
	if endpoint == "" {
		endpoint = DefaultOverpassEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &OverpassFetcher{
		client:    &http.Client{Timeout: overpassTimeout},
		endpoint:  endpoint,
		userAgent: userAgent,
		log:       log,
	}
}

type overpassElement struct {
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FetchCities queries Overpass for the city/town/village nodes inside the
// region's administrative boundary (admin_level 4).
func (f *OverpassFetcher) FetchCities(ctx context.Context, region string, minPopulation float64) ([]City, error) {
	regionName, err := RegionName(region)
	if err != nil {
		return nil, err
	}

	f.log.Info("fetching cities from Overpass API",
		zap.String("region", regionName),
		zap.Float64("minPopulation", minPopulation))

	query := fmt.Sprintf(`[out:json][timeout:30];
area["name"=%q]["boundary"="administrative"]["admin_level"="4"]->.reg;
(
  node["place"~"city|town|village"](area.reg);
);
out body;`, regionName)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("osmdata: build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osmdata: overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osmdata: overpass returned status %d", resp.StatusCode)
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("osmdata: decode overpass response: %w", err)
	}

	cities := filterPlaces(payload.Elements, minPopulation)
	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: region %q with min population %.0f",
			ErrNoCities, regionName, minPopulation)
	}

	f.log.Info("fetched cities", zap.String("region", regionName), zap.Int("count", len(cities)))
	return cities, nil
}

// filterPlaces applies the name/population rules shared by every source:
// unnamed places are dropped, population defaults to 0 when the tag is
// missing or unparsable, duplicate names keep the first occurrence. The
// result is sorted by name so city indices are stable across fetches.
func filterPlaces(elements []overpassElement, minPopulation float64) []City {
	seen := make(map[string]bool, len(elements))
	cities := make([]City, 0, len(elements))

	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" || seen[name] {
			continue
		}

		population := 0.0
		if raw := el.Tags["population"]; raw != "" {
			if p, err := strconv.ParseFloat(raw, 64); err == nil {
				population = p
			}
		}
		if population < minPopulation {
			continue
		}

		seen[name] = true
		cities = append(cities, City{
			Name:       name,
			Lat:        el.Lat,
			Lon:        el.Lon,
			Population: population,
		})
	}

	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities
}
