package usecases

import (
	"context"

	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"
)

// CitySource is the data dependency of the planner: a cached city provider
// with an explicit refresh path.
type CitySource interface {
	FetchCities(ctx context.Context, region string, minPopulation float64) ([]osmdata.City, error)
	RefreshCities(ctx context.Context, region string, minPopulation float64) ([]osmdata.City, error)
}

// PlanRequest carries everything one tour computation needs.
type PlanRequest struct {
	Region        string
	StartCity     string
	MinPopulation float64
	MaxIterations int
	Seed          int64
	Refresh       bool
}
