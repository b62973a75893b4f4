package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donorhub/internal/domain"
	"donorhub/internal/http/handlers"
	httpapi "donorhub/internal/http/httpapi"
	"donorhub/internal/infra"
	"donorhub/internal/infra/geoip"
	"donorhub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	policy, err := domain.ParseTransitionPolicy(cfg.StatusPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid STATUS_POLICY")
	}
	idMode, err := storage.ParseIDMode(cfg.IDMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid ID_MODE")
	}
	opts := storage.Options{Policy: policy, IDMode: idMode}

	ctx := context.Background()
	var stores domain.Store
	switch cfg.StoreDriver {
	case "memory":
		stores = storage.NewMemoryStore(opts)
	case "postgres":
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		stores, err = storage.NewPostgresStore(ctx, pool, opts)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize postgres store")
		}
	default:
		fileStore, err := storage.NewFileStore(cfg.DataDir, opts)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize file store")
		}
		stores = fileStore
	}

	app := handlers.NewApp(stores, logger)
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		app.Geo = resolver
	}

	router := httpapi.NewRouter(app, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
