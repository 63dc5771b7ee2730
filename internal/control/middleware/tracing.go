
// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"net/http"

	"github.com/mdreplay/engine/internal/telemetry"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Tracing creates a middleware that starts a server span per request and
// attaches it to the request context so downstream handlers (see
// internal/api/handler.go's session lookup) can enrich it with session
// attributes.
func Tracing(tracerName string) func(http.Handler) http.Handler {
	tracer := telemetry.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			// Use the route pattern, not the raw path, to keep span cardinality
			// bounded across distinct session IDs.
			route := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			ctx, span := tracer.Start(ctx, r.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			span.SetAttributes(telemetry.HTTPAttributes(r.Method, route, r.URL.Path, 0)...)
			if reqID := ww.Header().Get("X-Request-ID"); reqID != "" {
				span.SetAttributes(attribute.String("http.request_id", reqID))
			}

			next.ServeHTTP(ww, r.WithContext(ctx))

			// chi only fills in the route pattern once routing has run.
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" && pattern != route {
					route = pattern
					span.SetName(r.Method + " " + route)
				}
			}

			statusCode := ww.Status()
			span.SetAttributes(telemetry.HTTPAttributes(r.Method, route, r.URL.Path, statusCode)...)
			if statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(statusCode))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}
