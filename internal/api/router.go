// Package api is the transport adaptor: it maps the REST surface onto the
// session registry/session engine API, and owns the long-lived SSE
// subscribe endpoint. It is the one package in this module allowed to know
// about HTTP.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mdreplay/engine/internal/config"
	ctrlmw "github.com/mdreplay/engine/internal/control/middleware"
	"github.com/mdreplay/engine/internal/session/registry"
)

// NewRouter builds the full chi router: the canonical middleware stack
// (recoverer, request id, CORS, security headers, metrics, tracing,
// logging, rate limit) wrapping the /mktdata/session REST+SSE surface.
func NewRouter(reg *registry.Registry, cfg config.Config) *chi.Mux {
	mustLoadOpenAPIDoc()

	r := ctrlmw.NewRouter(ctrlmw.StackConfig{
		EnableCORS:            len(cfg.HTTP.AllowedOrigins) > 0,
		AllowedOrigins:        cfg.HTTP.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         cfg.Metrics.Enabled,
		TracingService:        tracingServiceName(cfg),
		EnableLogging:         true,
		EnableRateLimit:       cfg.HTTP.RateLimitEnable,
		RateLimitEnabled:      cfg.HTTP.RateLimitEnable,
		RateLimitGlobalRPS:    cfg.HTTP.RateLimitRPS,
		RateLimitBurst:        cfg.HTTP.RateLimitBurst,
	})

	h := &Handler{Registry: reg}
	r.Route("/mktdata/session", func(sr chi.Router) {
		sr.Post("/", h.Create)
		sr.Put("/start/{id}", h.Start)
		sr.Put("/stop/{id}", h.Stop)
		sr.Put("/rewind/{id}", h.Rewind)
		sr.Put("/speed/{id}/{speed}", h.SetSpeed)
		sr.Put("/forward/{id}/{n}", h.Forward)
		sr.Put("/jump/{id}/{eventId}", h.JumpTo)
		sr.Get("/subscribe/{id}", h.Subscribe)
	})
	r.Get("/openapi.yaml", serveOpenAPI)

	return r
}

func tracingServiceName(cfg config.Config) string {
	if !cfg.Tracing.Enabled {
		return ""
	}
	return cfg.Tracing.ServiceName
}
