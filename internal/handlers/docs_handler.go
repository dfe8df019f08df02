package handlers

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

// DocsHandler serves the OpenAPI document and the Swagger UI
type DocsHandler struct {
	ui http.HandlerFunc
}

// NewDocsHandler creates a new DocsHandler
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{
		ui: httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")),
	}
}

// Spec serves the embedded OpenAPI document
func (h *DocsHandler) Spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(openAPIDoc)
}

// UI serves the Swagger UI assets
func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	h.ui(w, r)
}
