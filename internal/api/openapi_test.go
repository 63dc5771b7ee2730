package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoadOpenAPIDoc_EmbeddedDocumentIsValid(t *testing.T) {
	require.NotPanics(t, func() {
		doc := mustLoadOpenAPIDoc()
		require.NotNil(t, doc)
		assert.Contains(t, doc.Paths.Map(), "/mktdata/session")
		assert.Contains(t, doc.Paths.Map(), "/mktdata/session/subscribe/{id}")
	})
}

func TestNewRouter_ServesOpenAPIDocument(t *testing.T) {
	r, _ := newTestRouter(t)
	r.Get("/openapi.yaml", serveOpenAPI)

	w := do(r, http.MethodGet, "/openapi.yaml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mdreplay session API")
}
