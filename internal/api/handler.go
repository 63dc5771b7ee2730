package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/mdreplay/engine/internal/session/model"
	"github.com/mdreplay/engine/internal/session/registry"
	"github.com/mdreplay/engine/internal/telemetry"
)

// Handler implements the REST control surface over a Registry.
type Handler struct {
	Registry *registry.Registry
}

// Create handles POST /mktdata/session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Registry.Create()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.ID()))
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (sessionHandle, bool) {
	id := chi.URLParam(r, "id")
	s, err := h.Registry.Get(id)
	if err != nil {
		RespondError(w, r, err)
		return sessionHandle{}, false
	}
	trace.SpanFromContext(r.Context()).SetAttributes(
		telemetry.SessionAttributes(id, chi.RouteContext(r.Context()).RoutePattern())...,
	)
	return sessionHandle{s}, true
}

// sessionHandle narrows the methods handlers need off *session.Session,
// avoiding an import cycle concern between api and session packages (api
// only ever needs the control-op surface).
type sessionHandle struct {
	s interface {
		Start() (string, error)
		Stop() (string, error)
		Rewind() (string, error)
		SetSpeed(float64) (string, error)
		Forward(int) (string, error)
		JumpTo(int64) (string, error)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, status string, err error) {
	if err != nil {
		RespondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(status))
}

// Start handles PUT /mktdata/session/start/{id}.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	status, err := sh.s.Start()
	writeStatus(w, r, status, err)
}

// Stop handles PUT /mktdata/session/stop/{id}.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	status, err := sh.s.Stop()
	writeStatus(w, r, status, err)
}

// Rewind handles PUT /mktdata/session/rewind/{id}.
func (h *Handler) Rewind(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	status, err := sh.s.Rewind()
	writeStatus(w, r, status, err)
}

// SetSpeed handles PUT /mktdata/session/speed/{id}/{speed}.
func (h *Handler) SetSpeed(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "speed")
	speed, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		RespondError(w, r, &model.InvalidArgumentError{Field: "speed", Reason: "not a number"})
		return
	}
	status, err := sh.s.SetSpeed(speed)
	writeStatus(w, r, status, err)
}

// Forward handles PUT /mktdata/session/forward/{id}/{n}.
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "n")
	n, perr := strconv.Atoi(raw)
	if perr != nil {
		RespondError(w, r, &model.InvalidArgumentError{Field: "n", Reason: "not an integer"})
		return
	}
	status, err := sh.s.Forward(n)
	writeStatus(w, r, status, err)
}

// JumpTo handles PUT /mktdata/session/jump/{id}/{eventId}.
func (h *Handler) JumpTo(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.session(w, r)
	if !ok {
		return
	}
	raw := chi.URLParam(r, "eventId")
	eventID, perr := strconv.ParseInt(raw, 10, 64)
	if perr != nil {
		RespondError(w, r, &model.InvalidArgumentError{Field: "eventId", Reason: "not an integer"})
		return
	}
	status, err := sh.s.JumpTo(eventID)
	writeStatus(w, r, status, err)
}
