package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file (if path is non-empty and exists) over the
// built-in defaults, then applies environment variable overrides on top.
// A missing path is not an error: the engine can run entirely off
// environment variables and defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if yerr := yaml.Unmarshal(data, &cfg); yerr != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, yerr)
			}
		case os.IsNotExist(err):
			// no file; defaults + env only
		default:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.PublishTickMillis = parseInt64("MDREPLAY_PUBLISH_TICK_MILLIS", cfg.PublishTickMillis)
	cfg.SessionTTLMillis = parseInt64("MDREPLAY_SESSION_TTL_MILLIS", cfg.SessionTTLMillis)
	cfg.OutboundCapacity = parseInt("MDREPLAY_OUTBOUND_CAPACITY", cfg.OutboundCapacity)
	cfg.CatalogueSource = parseString("MDREPLAY_CATALOGUE_SOURCE", cfg.CatalogueSource)

	cfg.Log.Level = parseString("MDREPLAY_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = parseString("MDREPLAY_LOG_FORMAT", cfg.Log.Format)

	cfg.HTTP.Addr = parseString("MDREPLAY_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.AllowedOrigins = parseStringSlice("MDREPLAY_HTTP_ALLOWED_ORIGINS", cfg.HTTP.AllowedOrigins)
	cfg.HTTP.RateLimitRPS = parseInt("MDREPLAY_HTTP_RATE_LIMIT_RPS", cfg.HTTP.RateLimitRPS)
	cfg.HTTP.RateLimitBurst = parseInt("MDREPLAY_HTTP_RATE_LIMIT_BURST", cfg.HTTP.RateLimitBurst)
	cfg.HTTP.RateLimitEnable = parseBool("MDREPLAY_HTTP_RATE_LIMIT_ENABLED", cfg.HTTP.RateLimitEnable)

	cfg.Metrics.Enabled = parseBool("MDREPLAY_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = parseString("MDREPLAY_METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Tracing.Enabled = parseBool("MDREPLAY_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.ServiceName = parseString("MDREPLAY_TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = parseString("MDREPLAY_TRACING_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)

	cfg.Catalogue.WarmCacheDir = parseString("MDREPLAY_CATALOGUE_WARM_CACHE_DIR", cfg.Catalogue.WarmCacheDir)
	cfg.Catalogue.ReloadWatchFile = parseString("MDREPLAY_CATALOGUE_RELOAD_WATCH_FILE", cfg.Catalogue.ReloadWatchFile)

	cfg.Redis.Addr = parseString("MDREPLAY_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.DB = parseInt("MDREPLAY_REDIS_DB", cfg.Redis.DB)
}
