// Package http provides the ops listing for the audit trail
package http

import (
	stdhttp "net/http"
	"strconv"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
)

// Register mounts the audit endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/events", h.events)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route GET /audit/events Audit auditEvents
// @Summary List negotiation, transfer, and cache decision events
// @Tags Audit
// @Produce json
// @Param since query string false "RFC3339 lower bound (inclusive)"
// @Param until query string false "RFC3339 upper bound (exclusive)"
// @Param bpn query string false "Filter by counterparty BPN"
// @Param kind query string false "Filter by event kind" Enums(cache_hit, cache_miss, cache_invalidated, negotiation_started, negotiation_finalized, negotiation_failed, negotiation_timeout, transfer_started, transfer_failed, edr_issued, credential_expired)
// @Param limit query int false "Max events (default 100, cap 1000)"
// @Success 200 {array} domain.Event "newest first"
// @Router /audit/events [get]
func (h *handlers) events(r *stdhttp.Request) (any, error) {
	qs := r.URL.Query()
	q := domain.Query{
		BPN:  qs.Get("bpn"),
		Kind: domain.Kind(qs.Get("kind")),
	}
	if v := qs.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, perr.InvalidArgf("since: want RFC3339, got %q", v)
		}
		q.Since = t
	}
	if v := qs.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, perr.InvalidArgf("until: want RFC3339, got %q", v)
		}
		q.Until = t
	}
	if v := qs.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, perr.InvalidArgf("limit: want a positive integer, got %q", v)
		}
		q.Limit = n
	}
	return h.svc.List(r.Context(), q)
}
