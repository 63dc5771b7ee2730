package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/session/registry"
)

func testCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.Load(context.Background(), "mem", catalogue.LoaderFunc(
		func(context.Context) ([]catalogue.RawEvent, error) {
			return []catalogue.RawEvent{
				{TimestampMillis: 0, Payload: map[string]string{"symbol": "a"}},
				{TimestampMillis: 100, Payload: map[string]string{"symbol": "b"}},
				{TimestampMillis: 250, Payload: map[string]string{"symbol": "c"}},
			}, nil
		}))
	require.NoError(t, err)
	return cat
}

func newTestRouter(t *testing.T) (*chi.Mux, *registry.Registry) {
	t.Helper()
	reg := registry.New(testCatalogue(t), registry.Config{PublishTickMillis: 1})
	h := &Handler{Registry: reg}

	r := chi.NewRouter()
	r.Route("/mktdata/session", func(sr chi.Router) {
		sr.Post("/", h.Create)
		sr.Put("/start/{id}", h.Start)
		sr.Put("/stop/{id}", h.Stop)
		sr.Put("/rewind/{id}", h.Rewind)
		sr.Put("/speed/{id}/{speed}", h.SetSpeed)
		sr.Put("/forward/{id}/{n}", h.Forward)
		sr.Put("/jump/{id}/{eventId}", h.JumpTo)
	})
	return r, reg
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateReturnsSessionID(t *testing.T) {
	r, reg := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	assert.NotEmpty(t, id)

	_, err := reg.Get(id)
	assert.NoError(t, err)
}

func TestHandler_StartStopRewind(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/start/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RUNNING", w.Body.String())

	w = do(r, http.MethodPut, "/mktdata/session/stop/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "STOPPED", w.Body.String())

	w = do(r, http.MethodPut, "/mktdata/session/rewind/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REWOUND", w.Body.String())
}

func TestHandler_UnknownSessionReturns404(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPut, "/mktdata/session/start/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_SESSION")
}

func TestHandler_SetSpeedRejectsNonNumeric(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/speed/"+id+"/fast")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ARGUMENT")
}

func TestHandler_SetSpeedRejectsNonPositive(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/speed/"+id+"/0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_JumpToUnknownEventReturns404(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/jump/"+id+"/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_EVENT")
}

func TestHandler_ForwardPastEndCompletes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/forward/"+id+"/100")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", w.Body.String())

	w = do(r, http.MethodPut, "/mktdata/session/start/"+id)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "TERMINAL_SESSION")
}
