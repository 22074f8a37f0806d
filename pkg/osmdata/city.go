// Package osmdata supplies city coordinate records for Italian regions from
// OpenStreetMap, either over the Overpass API or from a local .osm.pbf
// extract, with an optional bolt-backed on-disk cache in front.
package osmdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownRegion is returned for a region code outside the Italian region table.
	ErrUnknownRegion = errors.New("osmdata: unknown region")

	// ErrNoCities is returned when a source yields no city matching the filter.
	ErrNoCities = errors.New("osmdata: no cities found")
)

// City is one populated place. Population is zero when OSM carries no
// population tag for the place.
type City struct {
	Name       string  `json:"name" msgpack:"name"`
	Lat        float64 `json:"lat" msgpack:"lat"`
	Lon        float64 `json:"lon" msgpack:"lon"`
	Population float64 `json:"population" msgpack:"population"`
}

// CitySource yields the cities of one region with at least minPopulation
// inhabitants. Implementations decide where the data comes from; callers are
// expected to handle transient failures themselves.
type CitySource interface {
	FetchCities(ctx context.Context, region string, minPopulation float64) ([]City, error)
}

// regions maps region codes to the administrative boundary names OSM uses.
var regions = map[string]string{
	"abruzzo":               "Abruzzo",
	"basilicata":            "Basilicata",
	"calabria":              "Calabria",
	"campania":              "Campania",
	"emilia-romagna":        "Emilia-Romagna",
	"friuli-venezia-giulia": "Friuli-Venezia Giulia",
	"lazio":                 "Lazio",
	"liguria":               "Liguria",
	"lombardia":             "Lombardia",
	"marche":                "Marche",
	"molise":                "Molise",
	"piemonte":              "Piemonte",
	"puglia":                "Puglia",
	"sardegna":              "Sardegna",
	"sicilia":               "Sicilia",
	"toscana":               "Toscana",
	"trentino-alto-adige":   "Trentino-Alto Adige/Südtirol",
	"umbria":                "Umbria",
	"valle-d-aosta":         "Valle d'Aosta/Vallée d'Aoste",
	"veneto":                "Veneto",
}

// RegionName resolves a region code (case-insensitive) to its OSM display name.
func RegionName(code string) (string, error) {
	name, ok := regions[strings.ToLower(code)]
	if !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownRegion, code,
			strings.Join(RegionCodes(), ", "))
	}
	return name, nil
}

// RegionCodes lists the known region codes in lexical order.
func RegionCodes() []string {
	codes := make([]string, 0, len(regions))
	for code := range regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Regions returns the code -> display-name table as a copy.
func Regions() map[string]string {
	out := make(map[string]string, len(regions))
	for code, name := range regions {
		out[code] = name
	}
	return out
}
