// Package config loads the engine's configuration from a YAML file with
// environment variable overrides. Precedence: file value as the base, then
// the matching MDREPLAY_-prefixed environment variable (upper-snake, e.g.
// http.rateLimitRPS -> MDREPLAY_HTTP_RATE_LIMIT_RPS) wins if set, then the
// built-in default if neither is present.
package config

import "time"

// Config is the full set of tunables the engine reads at startup. Core
// fields (catalogue/session/scheduler knobs) are process-lifetime
// constants; ambient fields are re-read on file change by Watcher (see
// reload.go).
type Config struct {
	// Core (spec-named, process-lifetime).
	PublishTickMillis int64  `yaml:"publishTickMillis"`
	SessionTTLMillis  int64  `yaml:"sessionTtlMillis"`
	OutboundCapacity  int    `yaml:"outboundCapacity"`
	CatalogueSource   string `yaml:"catalogueSource"`

	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`

	Catalogue CatalogueConfig `yaml:"catalogue"`
	Redis     RedisConfig     `yaml:"redis"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
	RateLimitRPS    int      `yaml:"rateLimitRPS"`
	RateLimitBurst  int      `yaml:"rateLimitBurst"`
	RateLimitEnable bool     `yaml:"rateLimitEnabled"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TracingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ServiceName  string `yaml:"serviceName"`
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}

type CatalogueConfig struct {
	WarmCacheDir    string `yaml:"warmCacheDir"`
	ReloadWatchFile string `yaml:"reloadWatchFile"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// Default returns the built-in configuration baseline.
func Default() Config {
	return Config{
		PublishTickMillis: 1,
		SessionTTLMillis:  time.Hour.Milliseconds(),
		OutboundCapacity:  1024,
		CatalogueSource:   "",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RateLimitRPS:    100,
			RateLimitBurst:  200,
			RateLimitEnable: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "mdreplay",
		},
		Catalogue: CatalogueConfig{
			WarmCacheDir: "",
		},
		Redis: RedisConfig{
			DB: 0,
		},
	}
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMillis) * time.Millisecond
}
