// Package http provides http transport for the data-plane proxy
package http

import (
	stdhttp "net/http"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/domain"
)

// Register mounts the proxy endpoint on the given router
func Register(r httpkit.Router, s domain.ForwarderPort) {
	h := &handlers{svc: s}
	r.Post("/request", h.request)
}

type handlers struct{ svc domain.ForwarderPort }

// swagger:route POST /assets/request Proxy proxyRequest
// @Summary Resolve an EDR and forward one request to the data plane
// @Description Negotiates on a cache miss, retries once on credential expiry.
// @Description The data-plane status, Content-Type, and body pass through unwrapped.
// @Tags Proxy
// @Accept json
// @Produce json
// @Param payload body domain.ProxyInput true "Counterparty, asset, and the request to forward"
// @Success 200 {object} object "data-plane response, passed through"
// @Router /assets/request [post]
func (h *handlers) request(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	in, err := httpkit.ParseJSON[domain.ProxyInput](r)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	if in.Requester == "" {
		// guard-authenticated callers get their principal as requester
		if p, perr := httpkit.Principal(r); perr == nil {
			in.Requester = p
		}
	}

	res, err := h.svc.Request(r.Context(), in)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}

	// the data plane owns the representation; only its content type is carried
	if ct := res.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
