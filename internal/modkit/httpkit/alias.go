// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http/bind"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) phttp.Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(phttp.Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// ParseJSON binds and validates a JSON body; for handlers that write their
// own response
func ParseJSON[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }

// RespondError writes the error envelope directly; for handlers that stream
// or pass raw bodies through
func RespondError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }
