// Command tsp solves a closed tour over the cities of an Italian region from
// the terminal: fetch the cities (Overpass API or a local .osm.pbf extract,
// cached on disk), solve, print the leg table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/usecases"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/logger"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"

	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	region        string
	startCity     string
	minPopulation float64
	refreshData   bool
	maxIterations int
	seed          int64
	userAgent     string
	pbfPath       string
	cachePath     string
	outputPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tsp",
		Short: "Heuristic TSP solver for the cities of an Italian region",
		Long: `Fetches the cities of an Italian region from OpenStreetMap, builds the
great-circle distance matrix and computes a near-optimal closed tour with
Nearest-Neighbor construction plus Iterated Local Search.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&region, "region", "basilicata", "italian region code (see 'tsp regions')")
	flags.StringVar(&startCity, "start-city", "Potenza", "name (or unique prefix) of the start city")
	flags.Float64Var(&minPopulation, "min-population", 1000, "minimum population for a city to be included")
	flags.BoolVar(&refreshData, "refresh-data", false, "ignore the on-disk cache and re-query OpenStreetMap")
	flags.IntVar(&maxIterations, "max-iterations", 1000, "iterated-local-search round budget")
	flags.Int64Var(&seed, "seed", 0, "perturbation seed (0 selects the default deterministic seed)")
	flags.StringVar(&userAgent, "user-agent", osmdata.DefaultUserAgent, "User-Agent for OSM requests")
	flags.StringVar(&pbfPath, "pbf", "", "read cities from a local .osm.pbf extract instead of the Overpass API")
	flags.StringVar(&cachePath, "cache", "data/cities.db", "path of the on-disk city cache")
	flags.StringVar(&outputPath, "output", "", "also write the result table to this file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "regions",
		Short: "List the supported region codes",
		Run: func(cmd *cobra.Command, args []string) {
			names := osmdata.Regions()
			for _, code := range osmdata.RegionCodes() {
				fmt.Printf("%-22s %s\n", code, names[code])
			}
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, cleanup, err := logger.NewFromEnv()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	db, err := bbolt.Open(cachePath, 0600, nil)
	if err != nil {
		return fmt.Errorf("open city cache: %w", err)
	}
	defer db.Close()

	cache, err := osmdata.NewCityCache(db)
	if err != nil {
		return err
	}

	var fetcher osmdata.CitySource
	if pbfPath != "" {
		fetcher = osmdata.NewPBFLoader(pbfPath, log)
	} else {
		fetcher = osmdata.NewOverpassFetcher(osmdata.DefaultOverpassEndpoint, userAgent, log)
	}
	source := osmdata.NewCachingSource(fetcher, cache, log)

	service := usecases.New(log, source)
	plan, err := service.PlanTour(context.Background(), usecases.PlanRequest{
		Region:        region,
		StartCity:     startCity,
		MinPopulation: minPopulation,
		MaxIterations: maxIterations,
		Seed:          seed,
		Refresh:       refreshData,
	})
	if err != nil {
		return err
	}

	printPlan(os.Stdout, plan)

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		printPlan(f, plan)
		log.Info("results written", zap.String("path", outputPath))
	}

	return nil
}

func printPlan(w io.Writer, plan *usecases.Plan) {
	name, _ := osmdata.RegionName(plan.Region)

	fmt.Fprintf(w, "TSP tour for %s (%d cities, start: %s)\n",
		name, len(plan.Cities), plan.Cities[plan.Start].Name)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))

	for i, leg := range plan.Legs {
		fmt.Fprintf(w, "%3d. %-28s -> %-28s %8.2f km\n", i+1, leg.From, leg.To, leg.Distance)
	}

	fmt.Fprintf(w, "\nInitial distance (Nearest-Neighbor): %.2f km\n", plan.Initial)
	fmt.Fprintf(w, "Final distance:                      %.2f km\n", plan.Total)
	if plan.Initial > 0 {
		improvement := plan.Initial - plan.Total
		fmt.Fprintf(w, "Improvement:                         %.2f km (%.2f%%)\n",
			improvement, improvement/plan.Initial*100)
	}
	fmt.Fprintf(w, "Search rounds: %d, elapsed: %s\n", plan.Rounds, plan.Duration.Round(time.Millisecond))
}
