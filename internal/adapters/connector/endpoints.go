package connector

import (
	"context"
	"encoding/json"
	"net/http"

	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
)

// QueryCatalog performs POST {CatalogPath} against the local control plane,
// asking it to fetch the counterparty's catalog over DSP
func (c *Client) QueryCatalog(ctx context.Context, q CatalogQuery) (CatalogResult, error) {
	doc := catalogRequestDoc{
		Context: map[string]string{
			"edc":  edcNamespace,
			"odrl": odrlNamespace,
			"dct":  dctNamespace,
		},
		Type:                "edc:CatalogRequest",
		CounterPartyID:      q.CounterpartyID,
		CounterPartyAddress: c.DSPURL(q.CounterpartyAddress),
		Protocol:            protocolID,
	}
	if q.Filter != nil || q.Offset > 0 || q.Limit > 0 {
		qs := &querySpecDoc{Offset: q.Offset, Limit: q.Limit}
		if q.Filter != nil {
			qs.FilterExpression = []Criterion{*q.Filter}
		}
		doc.QuerySpec = qs
	}

	b, err := c.do(ctx, http.MethodPost, c.opts.CatalogPath, doc)
	if err != nil {
		return CatalogResult{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return CatalogResult{}, perr.GatewayRejectedf("connector catalog: undecodable body: %v", err)
	}
	return CatalogResult{Raw: b, Document: m}, nil
}

// InitiateNegotiation performs POST {EDRsPath} with a ContractRequest and
// returns the new negotiation id. The EDRs entry point makes the connector
// manage the follow-up transfer and token renewal itself.
func (c *Client) InitiateNegotiation(ctx context.Context, r NegotiationRequest) (string, error) {
	doc := contractRequestDoc{
		Context: []any{
			txPolicyContext,
			odrlContext,
			map[string]string{"@vocab": edcNamespace},
		},
		Type:                "ContractRequest",
		CounterPartyAddress: c.DSPURL(r.CounterpartyAddress),
		Protocol:            protocolID,
		Policy:              negotiationPolicy(r),
		CallbackAddresses:   []string{},
	}

	b, err := c.do(ctx, http.MethodPost, c.opts.EDRsPath, doc)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", perr.GatewayRejectedf("connector negotiation: undecodable body: %v", err)
	}
	id := firstString(m, "@id")
	if id == "" {
		return "", perr.GatewayRejectedf("connector negotiation: response carries no @id")
	}
	return id, nil
}

// GetNegotiation performs GET {NegotiationsPath}/{id}
func (c *Client) GetNegotiation(ctx context.Context, id string) (Negotiation, error) {
	b, err := c.do(ctx, http.MethodGet, c.opts.NegotiationsPath+"/"+id, nil)
	if err != nil {
		return Negotiation{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return Negotiation{}, perr.GatewayRejectedf("connector negotiation %s: undecodable body: %v", id, err)
	}
	n := decodeNegotiation(m)
	if n.ID == "" {
		n.ID = id
	}
	return n, nil
}

// GetNegotiationState performs GET {NegotiationsPath}/{id}/state
func (c *Client) GetNegotiationState(ctx context.Context, id string) (string, error) {
	b, err := c.do(ctx, http.MethodGet, c.opts.NegotiationsPath+"/"+id+"/state", nil)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", perr.GatewayRejectedf("connector negotiation %s: undecodable state: %v", id, err)
	}
	return firstString(m, "state", "edc:state"), nil
}

// InitiateTransfer performs POST {TransfersPath} and returns the transfer
// process id
func (c *Client) InitiateTransfer(ctx context.Context, r TransferRequest) (string, error) {
	doc := transferRequestDoc{
		Context:             map[string]string{"@vocab": edcNamespace},
		Type:                "TransferRequest",
		AssetID:             r.AssetID,
		ContractID:          r.AgreementID,
		CounterPartyAddress: c.DSPURL(r.CounterpartyAddress),
		Protocol:            protocolID,
		TransferType:        transferTypePull,
		DataDestination:     map[string]string{"type": "HttpProxy"},
	}

	b, err := c.do(ctx, http.MethodPost, c.opts.TransfersPath, doc)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", perr.GatewayRejectedf("connector transfer: undecodable body: %v", err)
	}
	id := firstString(m, "@id")
	if id == "" {
		return "", perr.GatewayRejectedf("connector transfer: response carries no @id")
	}
	return id, nil
}

// GetTransferState performs GET {TransfersPath}/{id}/state
func (c *Client) GetTransferState(ctx context.Context, id string) (string, error) {
	b, err := c.do(ctx, http.MethodGet, c.opts.TransfersPath+"/"+id+"/state", nil)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", perr.GatewayRejectedf("connector transfer %s: undecodable state: %v", id, err)
	}
	return firstString(m, "state", "edc:state"), nil
}

// ListEDRs performs POST {EDRsPath}/request with a QuerySpec filtering on
// negotiation or asset id
func (c *Client) ListEDRs(ctx context.Context, f EDRFilter) ([]EDREntry, error) {
	doc := querySpecRequestDoc{
		Context: map[string]string{"@vocab": edcNamespace},
		Type:    "QuerySpec",
		Offset:  f.Offset,
		Limit:   f.Limit,
	}
	switch {
	case f.NegotiationID != "":
		doc.FilterExpression = []Criterion{{
			OperandLeft: "contractNegotiationId", Operator: "=", OperandRight: f.NegotiationID,
		}}
	case f.AssetID != "":
		doc.FilterExpression = []Criterion{{
			OperandLeft: "assetId", Operator: "=", OperandRight: f.AssetID,
		}}
	default:
		doc.FilterExpression = []Criterion{}
	}

	b, err := c.do(ctx, http.MethodPost, c.opts.EDRsPath+"/request", doc)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, perr.GatewayRejectedf("connector edrs: undecodable body: %v", err)
	}
	out := make([]EDREntry, 0, len(raw))
	for _, m := range raw {
		out = append(out, decodeEDREntry(m))
	}
	return out, nil
}

// FetchDataAddress performs GET {EDRsPath}/{transferID}/dataaddress with
// auto_refresh so the connector renews a token that is about to lapse
func (c *Client) FetchDataAddress(ctx context.Context, transferID string) (DataAddress, error) {
	path := c.opts.EDRsPath + "/" + transferID + "/dataaddress?auto_refresh=true"
	b, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return DataAddress{}, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return DataAddress{}, perr.GatewayRejectedf("connector dataaddress %s: undecodable body: %v", transferID, err)
	}
	da := decodeDataAddress(m)
	if da.Endpoint == "" || da.Authorization == "" {
		return DataAddress{}, perr.GatewayRejectedf("connector dataaddress %s: incomplete data address", transferID)
	}
	return da, nil
}

// Readiness performs GET {ReadinessPath}. A 2xx whose body carries
// isSystemHealthy=false still counts as not ready.
func (c *Client) Readiness(ctx context.Context) error {
	b, err := c.do(ctx, http.MethodGet, c.opts.ReadinessPath, nil)
	if err != nil {
		return err
	}
	var m map[string]any
	if len(b) > 0 && json.Unmarshal(b, &m) == nil {
		if healthy, ok := m["isSystemHealthy"].(bool); ok && !healthy {
			return perr.GatewayRejectedf("connector readiness: system reports unhealthy")
		}
	}
	return nil
}
