package api

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiYAML []byte

// mustLoadOpenAPIDoc parses and validates the embedded contract document.
// Panics on failure: a broken contract document is a build-time defect, not
// a runtime condition callers should have to handle.
func mustLoadOpenAPIDoc() *openapi3.T {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		panic("api: invalid embedded openapi.yaml: " + err.Error())
	}
	if err := doc.Validate(context.Background()); err != nil {
		panic("api: embedded openapi.yaml failed validation: " + err.Error())
	}
	return doc
}

// serveOpenAPI writes the embedded contract document verbatim.
func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapiYAML)
}
