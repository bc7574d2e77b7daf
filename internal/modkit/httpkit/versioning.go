package httpkit

import (
	"net/http"
	"strings"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"
)

// MountAPI scopes a router under /api/{version}, applies the shared stack,
// then hands the scoped router to mount for module registration. Every
// response from the subtree carries an X-Api-Version header
//
// example:
//
//	httpkit.MountAPI(r, "v1", httpkit.CommonStack(), func(api httpkit.Router) {
//	  edrMod.MountRoutes(api)
//	})
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	ver := strings.TrimPrefix(version, "/")
	prefix := "/api/" + ver
	r.Route(prefix, func(api Router) {
		api.Use(middleware.SetHeader("X-Api-Version", ver))
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}

// MountAPIV1 is a convenience for MountAPI with version v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}
