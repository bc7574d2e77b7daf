// Package swaggerkit serves the Swagger UI and the merged OpenAPI document
package swaggerkit

import (
	"net/http"

	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount attaches the UI under /api/docs when enabled. The bare path redirects
// to the trailing-slash form because the UI's asset links are relative
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}

	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON())
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
