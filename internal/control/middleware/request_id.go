package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mdreplay/engine/internal/log"
)

// RequestID propagates an existing X-Request-ID header, or assigns a fresh
// one, through both the request context and the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
