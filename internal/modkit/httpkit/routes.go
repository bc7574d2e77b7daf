package httpkit

import "net/http"

// MountUnder scopes a module's routes below prefix ("/edrs", "/assets", ...)
// with its middlewares applied to that subtree only
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
