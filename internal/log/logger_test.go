package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigure_DefaultsServiceName(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	defer Configure(Config{})

	L().Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["service"] != "mdreplay" {
		t.Errorf("expected service=mdreplay, got %v", entry["service"])
	}
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "not-a-level"})
	defer Configure(Config{})

	if L().GetLevel().String() != "info" {
		t.Errorf("expected info level fallback, got %s", L().GetLevel())
	}
}

func TestMiddleware_AssignsAndEchoesRequestID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	defer Configure(Config{})

	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/mktdata/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header to be set")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["event"] != "request.handled" {
		t.Errorf("expected event=request.handled, got %v", entry["event"])
	}
	if entry["request_id"] == "" || entry["request_id"] == nil {
		t.Error("expected request_id field in log output")
	}
}

func TestMiddleware_PreservesUpstreamRequestID(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})
	defer Configure(Config{})

	var seen string
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/mktdata/session", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "upstream-id"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "upstream-id" {
		t.Errorf("expected upstream request id to be preserved, got %q", seen)
	}
}
