package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// compose with the key guard as needed in main
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.LogRequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability: structured access log, slow proxies marked at warn,
		// probe paths kept quiet
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: 2 * time.Second,
			Skip: []string{"/health"},
		}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),

		// must outlive the data-plane deadline so proxy timeouts surface
		// as 504 from the service, not a cut connection from the router
		middleware.Timeout(60 * time.Second),
	}
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	// middleware expects write func(w http.ResponseWriter, status int, body any)
	// use phttp.JSON which matches that signature
	return middleware.Auth(p, phttp.JSON)
}
