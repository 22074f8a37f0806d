package osmdata

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

var placeTags = map[string]bool{
	"city":    true,
	"town":    true,
	"village": true,
}

// PBFLoader reads populated places from a local .osm.pbf extract, for running
// without network access. The extract itself defines the area of interest, so
// the region argument is only validated, not used to clip.
type PBFLoader struct {
	path string
	log  *zap.Logger
}

func NewPBFLoader(path string, log *zap.Logger) *PBFLoader {
	return &PBFLoader{path: path, log: log}
}

// FetchCities scans the extract for city/town/village nodes, applying the same
// name/population rules as the Overpass source.
func (l *PBFLoader) FetchCities(ctx context.Context, region string, minPopulation float64) ([]City, error) {
	if _, err := RegionName(region); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("osmdata: open pbf extract: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("osmdata: stat pbf extract: %w", err)
	}

	bar := progressbar.NewOptions(int(stat.Size()),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan]Scanning osm places...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	scanner := osmpbf.New(ctx, f, 3)
	defer scanner.Close()

	seen := make(map[string]bool)
	cities := []City{}

	for scanner.Scan() {
		_ = bar.Set64(scanner.FullyScannedBytes())

		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		node := o.(*osm.Node)

		if !placeTags[node.Tags.Find("place")] {
			continue
		}
		name := node.Tags.Find("name")
		if name == "" || seen[name] {
			continue
		}

		population := 0.0
		if raw := node.Tags.Find("population"); raw != "" {
			if p, perr := strconv.ParseFloat(raw, 64); perr == nil {
				population = p
			}
		}
		if population < minPopulation {
			continue
		}

		seen[name] = true
		cities = append(cities, City{
			Name:       name,
			Lat:        node.Lat,
			Lon:        node.Lon,
			Population: population,
		})
	}
	_ = bar.Set64(stat.Size())
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("osmdata: scan pbf extract: %w", err)
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("%w: extract %q with min population %.0f",
			ErrNoCities, l.path, minPopulation)
	}

	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })

	l.log.Info("scanned pbf extract",
		zap.String("path", l.path),
		zap.Int("count", len(cities)))
	return cities, nil
}
