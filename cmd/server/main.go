// Command server runs the HTTP API: region listing, city fetching and tour
// solving over a cached Overpass city source.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	plannerHttp "github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/http/usecases"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/logger"
	"github.com/LuigiStigliano/TSP-Italian-Regions/pkg/osmdata"

	"github.com/spf13/viper"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

func main() {
	viper.AutomaticEnv()
	viper.SetDefault("CACHE_PATH", "data/cities.db")
	viper.SetDefault("OVERPASS_ENDPOINT", osmdata.DefaultOverpassEndpoint)
	viper.SetDefault("OSM_USER_AGENT", osmdata.DefaultUserAgent)

	zapLog, cleanup, err := logger.NewFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	cachePath := viper.GetString("CACHE_PATH")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		zapLog.Fatal("create cache directory", zap.Error(err))
	}
	db, err := bbolt.Open(cachePath, 0600, nil)
	if err != nil {
		zapLog.Fatal("open city cache", zap.Error(err))
	}
	defer db.Close()

	cache, err := osmdata.NewCityCache(db)
	if err != nil {
		zapLog.Fatal("init city cache", zap.Error(err))
	}

	fetcher := osmdata.NewOverpassFetcher(
		viper.GetString("OVERPASS_ENDPOINT"),
		viper.GetString("OSM_USER_AGENT"),
		zapLog,
	)
	source := osmdata.NewCachingSource(fetcher, cache, zapLog)
	plannerService := usecases.New(zapLog, source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := plannerHttp.NewServer(zapLog)
	if err := server.Run(ctx, plannerService); err != nil {
		zapLog.Fatal("API server stopped", zap.Error(err))
	}
}
