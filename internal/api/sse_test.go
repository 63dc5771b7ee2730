package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdreplay/engine/internal/session/registry"
)

func newSSERouter(t *testing.T) (*chi.Mux, *registry.Registry) {
	t.Helper()
	reg := registry.New(testCatalogue(t), registry.Config{PublishTickMillis: 1})
	h := &Handler{Registry: reg}

	r := chi.NewRouter()
	r.Get("/mktdata/session/subscribe/{id}", h.Subscribe)
	r.Post("/mktdata/session/", h.Create)
	r.Put("/mktdata/session/forward/{id}/{n}", h.Forward)
	return r, reg
}

func TestSubscribe_UnknownSessionReturns404(t *testing.T) {
	r, _ := newSSERouter(t)

	w := do(r, http.MethodGet, "/mktdata/session/subscribe/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribe_CompletedSessionStreamsEmptyThenCloses(t *testing.T) {
	r, _ := newSSERouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	w = do(r, http.MethodPut, "/mktdata/session/forward/"+id+"/100")
	require.Equal(t, "COMPLETED", w.Body.String())

	w = do(r, http.MethodGet, "/mktdata/session/subscribe/"+id)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Body.String())
}

func TestSubscribe_StreamsEventsAsTheyPublish(t *testing.T) {
	r, reg := newSSERouter(t)

	w := do(r, http.MethodPost, "/mktdata/session/")
	id := w.Body.String()

	s, err := reg.Get(id)
	require.NoError(t, err)
	_, err = s.SetSpeed(1_000_000)
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)

	w = do(r, http.MethodGet, "/mktdata/session/subscribe/"+id)
	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `"symbol":"a"`)
	assert.Contains(t, body, `"symbol":"c"`)
}
