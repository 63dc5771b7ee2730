// SPDX-License-Identifier: MIT

// Package telemetry provides OpenTelemetry tracing utilities for the daemon.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPUserAgentKey  = "http.user_agent"

	// Session attributes
	SessionIDKey    = "session.id"
	SessionOpKey    = "session.op"
	SessionStateKey = "session.state"

	// Scheduler attributes
	SchedulerSpeedKey  = "scheduler.speed"
	SchedulerCursorKey = "scheduler.cursor"

	// Catalogue attributes
	CatalogueSourceKey = "catalogue.source"
	CatalogueSizeKey   = "catalogue.events"

	// Job attributes
	JobTypeKey     = "job.type"
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// SessionAttributes creates span attributes identifying a control op against
// a session.
func SessionAttributes(sessionID, op string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SessionIDKey, sessionID),
		attribute.String(SessionOpKey, op),
	}
}

// SchedulerAttributes creates span attributes describing a scheduler's
// current playback position.
func SchedulerAttributes(speed float64, cursor int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(SchedulerSpeedKey, speed),
		attribute.Int64(SchedulerCursorKey, cursor),
	}
}

// CatalogueAttributes creates span attributes describing a loaded catalogue.
func CatalogueAttributes(source string, size int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(CatalogueSourceKey, source),
		attribute.Int(CatalogueSizeKey, size),
	}
}

// JobAttributes creates job-related span attributes.
func JobAttributes(jobType, status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobTypeKey, jobType),
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
