// Command mdreplayd runs the market-data replay engine as an HTTP daemon:
// it loads the event catalogue once at startup, serves the session control
// API and SSE streams, and exposes a Prometheus metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mdreplay/engine/internal/api"
	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/config"
	"github.com/mdreplay/engine/internal/log"
	"github.com/mdreplay/engine/internal/metrics"
	"github.com/mdreplay/engine/internal/session/registry"
	"github.com/mdreplay/engine/internal/telemetry"
)

func main() {
	configPath := flag.String("config", os.Getenv("MDREPLAY_CONFIG_FILE"), "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log.Configure(log.Config{Level: cfg.Log.Level, Service: "mdreplayd"})
	logger := log.L()

	if cfg.CatalogueSource == "" {
		logger.Fatal().Msg("catalogue source not configured (MDREPLAY_CATALOGUE_SOURCE or catalogueSource)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalogue(ctx, cfg, *logger)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.CatalogueSource).Msg("failed to load catalogue")
	}
	metrics.CatalogueSize.Set(float64(cat.Size()))
	logger.Info().Int("events", cat.Size()).Str("source", cfg.CatalogueSource).Msg("catalogue loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		ExporterType: "grpc",
		Endpoint:     cfg.Tracing.OTLPEndpoint,
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("tracing provider init failed, continuing without tracing")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	reg := registry.New(cat, registry.Config{
		SessionTTL:        cfg.SessionTTL(),
		SweepInterval:     30 * time.Second,
		OutboundCapacity:  cfg.OutboundCapacity,
		PublishTickMillis: cfg.PublishTickMillis,
	})
	sweeper := &registry.Sweeper{Registry: reg, Interval: 30 * time.Second, Log: *logger}
	sweeper.Start(ctx)

	if cfg.Catalogue.ReloadWatchFile != "" {
		watcher := config.NewWatcher(*configPath, cfg, func(a config.Ambient) {
			log.Configure(log.Config{Level: a.Log.Level, Service: "mdreplayd"})
			logger.Info().Msg("ambient configuration changed; restart to apply HTTP/tracing/metrics changes")
		}, *logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("config watcher stopped")
			}
		}()
	}

	router := api.NewRouter(reg, cfg)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = startMetricsServer(cfg.Metrics.Addr, *logger)
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown error")
		}
	}
	if err := reg.CloseAndWait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("registry shutdown error")
	}
}

func loadCatalogue(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*catalogue.Catalogue, error) {
	loader := catalogue.NewCSVLoader(cfg.CatalogueSource)

	opts := catalogue.CacheOptions{Log: logger}
	if cfg.Catalogue.WarmCacheDir != "" {
		opts.Warm = catalogue.NewWarmCache(cfg.Catalogue.WarmCacheDir)
	}
	if cfg.Redis.Addr != "" {
		shared, err := catalogue.NewSharedCache(cfg.Redis.Addr, cfg.Redis.DB, 0, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("shared catalogue cache unavailable, continuing without it")
		} else {
			opts.Shared = shared
		}
	}

	return catalogue.LoadWithCache(ctx, cfg.CatalogueSource, loader, opts)
}

func startMetricsServer(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}
