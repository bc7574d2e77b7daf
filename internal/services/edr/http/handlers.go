// Package http provides http transport for the EDR engine
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Register mounts the EDR endpoints on the given router
func Register(r httpkit.Router, s domain.RequesterPort) {
	h := &handlers{svc: s}

	// raw catalog browsing
	httpkit.PostJSON[domain.CatalogInput](r, "/catalog", h.catalog)

	// stepwise lifecycle operations
	httpkit.PostJSON[domain.NegotiationInput](r, "/negotiations", h.startNegotiation)
	httpkit.Get(r, "/negotiations/{id}", h.negotiationStatus)
	httpkit.PostJSON[domain.TransferInput](r, "/transfers", h.startTransfer)
	httpkit.Get(r, "/transfers/{id}", h.transferStatus)
	httpkit.Get(r, "/transfers/{id}/dataaddress", h.dataAddress)
	httpkit.Get(r, "/edrs", h.edrs)

	// the combined cached flow
	httpkit.PostJSON[domain.ResolveInput](r, "/resolve", h.resolve)
	httpkit.PostJSON[domain.InvalidateInput](r, "/cache/invalidate", h.invalidate)
}

type handlers struct{ svc domain.RequesterPort }

// swagger:route POST /edr/catalog EDR edrCatalog
// @Summary Query a counterparty catalog
// @Tags EDR
// @Accept json
// @Produce json
// @Param payload body domain.CatalogInput true "Catalog query"
// @Success 200 {object} object "dcat:Catalog document"
// @Router /edr/catalog [post]
func (h *handlers) catalog(r *stdhttp.Request, in domain.CatalogInput) (any, error) {
	raw, err := h.svc.Catalog(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// swagger:route POST /edr/negotiations EDR edrStartNegotiation
// @Summary Initiate a contract negotiation
// @Tags EDR
// @Accept json
// @Produce json
// @Param payload body domain.NegotiationInput true "Negotiation request"
// @Success 200 {object} domain.NegotiationStartedOut "ok"
// @Router /edr/negotiations [post]
func (h *handlers) startNegotiation(r *stdhttp.Request, in domain.NegotiationInput) (any, error) {
	return h.svc.StartNegotiation(r.Context(), in)
}

// swagger:route GET /edr/negotiations/{id} EDR edrNegotiationStatus
// @Summary Read a contract negotiation
// @Tags EDR
// @Produce json
// @Param id path string true "Negotiation id"
// @Success 200 {object} domain.NegotiationStatusOut "ok"
// @Router /edr/negotiations/{id} [get]
func (h *handlers) negotiationStatus(r *stdhttp.Request) (any, error) {
	return h.svc.NegotiationStatus(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route POST /edr/transfers EDR edrStartTransfer
// @Summary Initiate a transfer process
// @Tags EDR
// @Accept json
// @Produce json
// @Param payload body domain.TransferInput true "Transfer request"
// @Success 200 {object} domain.TransferStartedOut "ok"
// @Router /edr/transfers [post]
func (h *handlers) startTransfer(r *stdhttp.Request, in domain.TransferInput) (any, error) {
	return h.svc.StartTransfer(r.Context(), in)
}

// swagger:route GET /edr/transfers/{id} EDR edrTransferStatus
// @Summary Read a transfer process state
// @Tags EDR
// @Produce json
// @Param id path string true "Transfer process id"
// @Success 200 {object} domain.TransferStatusOut "ok"
// @Router /edr/transfers/{id} [get]
func (h *handlers) transferStatus(r *stdhttp.Request) (any, error) {
	return h.svc.TransferStatus(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /edr/transfers/{id}/dataaddress EDR edrDataAddress
// @Summary Read the data-plane address of a transfer
// @Tags EDR
// @Produce json
// @Param id path string true "Transfer process id"
// @Success 200 {object} domain.DataAddressOut "ok"
// @Router /edr/transfers/{id}/dataaddress [get]
func (h *handlers) dataAddress(r *stdhttp.Request) (any, error) {
	return h.svc.DataAddress(r.Context(), chi.URLParam(r, "id"))
}

// swagger:route GET /edr/edrs EDR edrList
// @Summary List connector-held EDR entries
// @Tags EDR
// @Produce json
// @Param negotiationId query string false "Filter by contract negotiation id"
// @Param assetId query string false "Filter by asset id"
// @Success 200 {array} domain.EDREntryRow "ok"
// @Router /edr/edrs [get]
func (h *handlers) edrs(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	return h.svc.EDRs(r.Context(), domain.EDRQuery{
		NegotiationID: q.Get("negotiationId"),
		AssetID:       q.Get("assetId"),
	})
}

// swagger:route POST /edr/resolve EDR edrResolve
// @Summary Resolve a usable EDR, negotiating when the cache cannot serve
// @Tags EDR
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Counterparty and asset descriptor"
// @Success 200 {object} domain.EDR "ok"
// @Router /edr/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	if in.Requester == "" {
		// guard-authenticated callers get their principal as requester
		if p, err := httpkit.Principal(r); err == nil {
			in.Requester = p
		}
	}
	return h.svc.Resolve(r.Context(), in)
}

// swagger:route POST /edr/cache/invalidate EDR edrInvalidate
// @Summary Drop the cached EDR for a counterparty/asset pair
// @Tags EDR
// @Accept json
// @Produce json
// @Param payload body domain.InvalidateInput true "Cache key"
// @Success 204 {object} nil "invalidated"
// @Router /edr/cache/invalidate [post]
func (h *handlers) invalidate(r *stdhttp.Request, in domain.InvalidateInput) (any, error) {
	if err := h.svc.Invalidate(r.Context(), domain.Key{
		CounterpartyID: in.CounterPartyID,
		AssetID:        in.AssetID,
	}); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
