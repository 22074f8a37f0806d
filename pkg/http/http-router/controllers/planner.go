package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	helper "github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/http-router/router-helper"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/usecases"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/tsp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"

	"go.uber.org/zap"
)

type plannerAPI struct {
	plannerService PlannerService
	log            *zap.Logger
}

func New(plannerService PlannerService, log *zap.Logger) *plannerAPI {
	return &plannerAPI{
		plannerService: plannerService,
		log:            log,
	}
}

func (api *plannerAPI) Routes(group *helper.RouteGroup) {
	group.GET("/regions", api.regions)
	group.POST("/cities", api.cities)
	group.POST("/solve", api.solve)
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// regions returns the supported Italian region codes and display names.
func (api *plannerAPI) regions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": api.plannerService.Regions()}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type citiesRequest struct {
	Region        string  `json:"region" validate:"required"`      // italian region code, e.g. "basilicata".
	MinPopulation float64 `json:"min_population" validate:"min=0"` // keep only cities with at least this many inhabitants.
	Refresh       bool    `json:"refresh"`                         // bypass the on-disk cache and re-query OSM.
}

// cities returns the candidate cities of a region without solving.
func (api *plannerAPI) cities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request citiesRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateRequest(w, r, &request) {
		return
	}

	cities, err := api.plannerService.Cities(r.Context(), request.Region, request.MinPopulation, request.Refresh)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": cities}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type solveRequest struct {
	Region        string  `json:"region" validate:"required"`                  // italian region code.
	StartCity     string  `json:"start_city" validate:"required"`              // name (or unique prefix) of the start city.
	MinPopulation float64 `json:"min_population" validate:"min=0"`             // population threshold for included cities.
	MaxIterations int     `json:"max_iterations" validate:"min=1,max=1000000"` // iterated-local-search round budget.
	Seed          int64   `json:"seed"`                                        // perturbation seed; 0 selects the default.
	Refresh       bool    `json:"refresh"`                                     // bypass the on-disk cache.
}

type solveResponse struct {
	Region          string         `json:"region"`
	Cities          []osmdata.City `json:"cities"`
	Tour            []int          `json:"tour"`
	Path            []string       `json:"path"`
	Legs            []tsp.Leg      `json:"legs"`
	TotalDistance   float64        `json:"total_distance"`
	InitialDistance float64        `json:"initial_distance"`
	Rounds          int            `json:"rounds"`
	ElapsedMS       int64          `json:"elapsed_ms"`
}

// solve computes a closed tour over the region's cities from the given start.
func (api *plannerAPI) solve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request solveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if !api.validateRequest(w, r, &request) {
		return
	}

	plan, err := api.plannerService.PlanTour(r.Context(), usecases.PlanRequest{
		Region:        request.Region,
		StartCity:     request.StartCity,
		MinPopulation: request.MinPopulation,
		MaxIterations: request.MaxIterations,
		Seed:          request.Seed,
		Refresh:       request.Refresh,
	})
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	response := solveResponse{
		Region:          plan.Region,
		Cities:          plan.Cities,
		Tour:            plan.Tour,
		Path:            plan.Path,
		Legs:            plan.Legs,
		TotalDistance:   plan.Total,
		InitialDistance: plan.Initial,
		Rounds:          plan.Rounds,
		ElapsedMS:       plan.Duration.Milliseconds(),
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": response}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// validateRequest runs struct validation and writes a translated 400 on failure.
func (api *plannerAPI) validateRequest(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

// domainErrorResponse maps known input errors to 400 and the rest to 500.
func (api *plannerAPI) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, osmdata.ErrUnknownRegion),
		errors.Is(err, osmdata.ErrNoCities),
		errors.Is(err, usecases.ErrCityNotFound),
		errors.Is(err, usecases.ErrAmbiguousCity),
		errors.Is(err, tsp.ErrNoCities),
		errors.Is(err, tsp.ErrStartOutOfRange):
		api.BadRequestResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := errors.New(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
