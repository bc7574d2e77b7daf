package http

import (
	"net/http"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http/bind"
)

// JSONHandler adapts a pure JSON handler to a platform Handler. Handlers may
// return a Response to control the status themselves
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}
