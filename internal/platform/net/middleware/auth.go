package middleware

import (
	"net/http"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	pnet "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net"
)

// AuthPort is the seam the API-key guard implements. Kept as an interface so
// handler tests can substitute a canned principal
type AuthPort interface {
	// Parse returns the caller identity derived from the request or an error
	Parse(r *http.Request) (principal string, err error)
}

// Auth is a no-op until wired. It uses the port when provided
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), principal)
			ctx = logger.WithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
