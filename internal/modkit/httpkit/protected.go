package httpkit

import (
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"
)

// Protected groups routes under the API-key guard so a missing or bad
// X-Api-Key is rejected before any handler in the group runs
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
