package http

import (
	"context"

	http_router "github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/http-router"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/http-router/controllers"
	http_server "github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/server"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Run starts the planner API and blocks until it stops.
func (s *Server) Run(
	ctx context.Context,

	plannerService controllers.PlannerService,
) error {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "120s")

	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(s.Log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, config, s.Log, plannerService)
	})

	return g.Wait()
}
