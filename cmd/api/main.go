package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jewelshot/internal/bootstrap"
	"jewelshot/internal/http/handlers"
	httpapi "jewelshot/internal/http/httpapi"
	"jewelshot/internal/infra"
	"jewelshot/internal/infra/geoip"
	"jewelshot/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	for _, name := range cfg.Missing() {
		logger.Warn().Str("var", name).Msg("environment variable not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise services")
	}
	defer services.Close()

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Lookup()
	}

	clients := handlers.NewClients(services.NewController, cfg.ClientIdleTimeout, logger)
	defer clients.CloseAll()
	go clients.Run(ctx, time.Minute)

	app := handlers.NewApp(cfg, clients, services.Stats, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		SubmitsPerMinute: cfg.RateLimitPerMin,
		SecureCookies:    !cfg.IsDevelopment(),
		CountryLookup:    lookup,
		StaticDir:        cfg.StaticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("model", cfg.GeminiModel).
			Str("driver", cfg.SynthesisDriver).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
