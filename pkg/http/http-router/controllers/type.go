package controllers

import (
	"context"

	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/usecases"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"
)

type PlannerService interface {
	Regions() map[string]string
	Cities(ctx context.Context, region string, minPopulation float64, refresh bool) ([]osmdata.City, error)
	PlanTour(ctx context.Context, req usecases.PlanRequest) (*usecases.Plan, error)
}

type envelope map[string]interface{}
