package httpkit

import (
	"net/http"

	perrs "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	pnet "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net"
)

// Principal returns the caller identity the API-key guard put on the request
// context. Handlers use it to attribute cache entries and audit events when
// the payload names no requester
func Principal(r *http.Request) (string, error) {
	p := pnet.Principal(r.Context())
	if p == "" {
		return "", perrs.Unauthorizedf("missing api key")
	}
	return p, nil
}

// MustPrincipal returns the caller identity or panics
// only use on routes protected by the key guard
func MustPrincipal(r *http.Request) string {
	p, err := Principal(r)
	if err != nil {
		panic(err)
	}
	return p
}
