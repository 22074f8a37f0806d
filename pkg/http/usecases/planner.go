// Package usecases orchestrates city fetching and tour solving behind the
// transport layers (HTTP API, CLI).
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/tsp"

	"go.uber.org/zap"
)

var (
	// ErrCityNotFound is returned when the requested start city matches no
	// fetched city, not even as a substring.
	ErrCityNotFound = errors.New("usecases: start city not found in region")

	// ErrAmbiguousCity is returned when a partial start-city name matches
	// more than one city.
	ErrAmbiguousCity = errors.New("usecases: start city name is ambiguous")
)

// PlannerService wires a city source to the TSP solver.
type PlannerService struct {
	log    *zap.Logger
	source CitySource
}

func New(log *zap.Logger, source CitySource) *PlannerService {
	return &PlannerService{log: log, source: source}
}

// Plan is a solved tour together with the inputs a consumer needs to display
// or export it.
type Plan struct {
	Region   string
	Cities   []osmdata.City
	Start    int
	Tour     []int
	Path     []string
	Legs     []tsp.Leg
	Total    float64
	Initial  float64
	Rounds   int
	Duration time.Duration
}

// Regions lists the supported region codes and display names.
func (s *PlannerService) Regions() map[string]string {
	return osmdata.Regions()
}

// Cities fetches the candidate cities for a region without solving.
func (s *PlannerService) Cities(ctx context.Context, region string, minPopulation float64, refresh bool) ([]osmdata.City, error) {
	if refresh {
		return s.source.RefreshCities(ctx, region, minPopulation)
	}
	return s.source.FetchCities(ctx, region, minPopulation)
}

// PlanTour fetches the region's cities, builds the distance matrix and runs
// the solver from the requested start city.
func (s *PlannerService) PlanTour(ctx context.Context, req PlanRequest) (*Plan, error) {
	cities, err := s.Cities(ctx, req.Region, req.MinPopulation, req.Refresh)
	if err != nil {
		return nil, err
	}

	start, err := FindCityIndex(req.StartCity, cities)
	if err != nil {
		return nil, err
	}

	points := toPoints(cities)
	matrix := tsp.BuildDistanceMatrix(points)

	solver, err := tsp.NewSolver(matrix, tsp.Names(points))
	if err != nil {
		return nil, err
	}

	s.log.Info("solving tour",
		zap.String("region", req.Region),
		zap.Int("cities", len(cities)),
		zap.String("start", cities[start].Name),
		zap.Int("maxIterations", req.MaxIterations))

	began := time.Now()
	res, err := solver.Solve(start, req.MaxIterations, tsp.NewRand(req.Seed))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(began)

	s.log.Info("tour solved",
		zap.Float64("initialKM", res.InitialDistance),
		zap.Float64("totalKM", res.TotalDistance),
		zap.Int("rounds", res.Rounds),
		zap.Duration("elapsed", elapsed))

	return &Plan{
		Region:   req.Region,
		Cities:   cities,
		Start:    start,
		Tour:     res.Tour,
		Path:     res.PathWithNames(),
		Legs:     res.PathDetails(),
		Total:    res.TotalDistance,
		Initial:  res.InitialDistance,
		Rounds:   res.Rounds,
		Duration: elapsed,
	}, nil
}

// FindCityIndex resolves a city name against the fetched list: exact match
// first (case-insensitive), then a unique substring match. Zero matches or an
// ambiguous partial name are errors.
func FindCityIndex(name string, cities []osmdata.City) (int, error) {
	needle := strings.ToLower(strings.TrimSpace(name))

	for i, city := range cities {
		if strings.ToLower(city.Name) == needle {
			return i, nil
		}
	}

	matches := []int{}
	for i, city := range cities {
		if strings.Contains(strings.ToLower(city.Name), needle) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: %q", ErrCityNotFound, name)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = cities[m].Name
		}
		return 0, fmt.Errorf("%w: %q matches %s", ErrAmbiguousCity, name, strings.Join(names, ", "))
	}
}

func toPoints(cities []osmdata.City) []tsp.Point {
	points := make([]tsp.Point, len(cities))
	for i, c := range cities {
		points[i] = tsp.Point{
			Index:      i,
			Name:       c.Name,
			Lat:        c.Lat,
			Lon:        c.Lon,
			Population: c.Population,
		}
	}
	return points
}
