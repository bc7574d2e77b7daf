package connector

import "encoding/json"

// JSON-LD identifiers used by the management API bodies
const (
	edcNamespace     = "https://w3id.org/edc/v0.0.1/ns/"
	odrlNamespace    = "http://www.w3.org/ns/odrl/2/"
	dctNamespace     = "https://purl.org/dc/terms/"
	odrlContext      = "http://www.w3.org/ns/odrl.jsonld"
	txPolicyContext  = "https://w3id.org/tractusx/policy/v1.0.0"
	protocolID       = "dataspace-protocol-http"
	transferTypePull = "HttpData-PULL"

	// OperandTypeID addresses the dct:type @id of a dataset in catalog filters
	OperandTypeID = "'http://purl.org/dc/terms/type'.'@id'"
	// OperandAssetID addresses the asset id of a dataset in catalog filters
	OperandAssetID = edcNamespace + "id"
)

// Criterion is one filterExpression clause of a management-API QuerySpec
type Criterion struct {
	OperandLeft  string `json:"operandLeft"`
	Operator     string `json:"operator"`
	OperandRight any    `json:"operandRight"`
}

// TypeFilter matches datasets whose dct:type @id equals the given value
func TypeFilter(dctType string) Criterion {
	return Criterion{OperandLeft: OperandTypeID, Operator: "=", OperandRight: dctType}
}

// AssetFilter matches the dataset with the given asset id
func AssetFilter(assetID string) Criterion {
	return Criterion{OperandLeft: OperandAssetID, Operator: "=", OperandRight: assetID}
}

// CatalogQuery describes one catalog request against a counterparty connector
type CatalogQuery struct {
	// CounterpartyAddress is the counterparty control plane base; the DSP
	// suffix is appended when missing
	CounterpartyAddress string
	CounterpartyID      string
	Filter              *Criterion
	Offset              int
	Limit               int
}

type catalogRequestDoc struct {
	Context             map[string]string `json:"@context"`
	Type                string            `json:"@type"`
	CounterPartyID      string            `json:"counterPartyId"`
	CounterPartyAddress string            `json:"counterPartyAddress"`
	Protocol            string            `json:"protocol"`
	QuerySpec           *querySpecDoc     `json:"querySpec,omitempty"`
}

type querySpecDoc struct {
	Offset           int         `json:"offset,omitempty"`
	Limit            int         `json:"limit,omitempty"`
	FilterExpression []Criterion `json:"filterExpression,omitempty"`
}

type querySpecRequestDoc struct {
	Context          map[string]string `json:"@context"`
	Type             string            `json:"@type"`
	Offset           int               `json:"offset,omitempty"`
	Limit            int               `json:"limit,omitempty"`
	FilterExpression []Criterion       `json:"filterExpression"`
}

// CatalogResult carries the raw dcat:Catalog document plus its decoded form
type CatalogResult struct {
	Raw      json.RawMessage
	Document map[string]any
}

// Datasets returns the dcat:dataset entries; the connector emits an object
// for a single dataset and an array otherwise
func (r CatalogResult) Datasets() []map[string]any {
	return asObjectList(r.Document["dcat:dataset"])
}

// DatasetPolicies returns the odrl:hasPolicy entries of a dataset, which the
// connector likewise collapses to an object when there is exactly one
func DatasetPolicies(ds map[string]any) []map[string]any {
	return asObjectList(ds["odrl:hasPolicy"])
}

// DatasetID returns the asset id of a catalog dataset
func DatasetID(ds map[string]any) string {
	return firstString(ds, "@id", "id")
}

// NegotiationRequest describes one contract negotiation to initiate
type NegotiationRequest struct {
	CounterpartyAddress string
	CounterpartyID      string // BPN, becomes the policy assigner
	OfferID             string
	AssetID             string
	// Policy is the offer policy lifted from the catalog; nil builds a
	// minimal Offer document from OfferID/AssetID
	Policy map[string]any
}

type contractRequestDoc struct {
	Context             []any          `json:"@context"`
	Type                string         `json:"@type"`
	CounterPartyAddress string         `json:"counterPartyAddress"`
	Protocol            string         `json:"protocol"`
	Policy              map[string]any `json:"policy"`
	CallbackAddresses   []string       `json:"callbackAddresses"`
}

// negotiationPolicy enriches the offer policy with target and assigner as the
// management API requires for a ContractRequest
func negotiationPolicy(r NegotiationRequest) map[string]any {
	p := make(map[string]any, len(r.Policy)+3)
	for k, v := range r.Policy {
		p[k] = v
	}
	if len(r.Policy) == 0 {
		p["@type"] = "Offer"
	}
	if r.OfferID != "" {
		p["@id"] = r.OfferID
	}
	p["target"] = r.AssetID
	p["assigner"] = r.CounterpartyID
	return p
}

// Negotiation is the decoded contract negotiation resource
type Negotiation struct {
	ID          string
	State       string
	AgreementID string
	ErrorDetail string
}

// TransferRequest describes one transfer process to initiate
type TransferRequest struct {
	CounterpartyAddress string
	AgreementID         string
	AssetID             string
}

type transferRequestDoc struct {
	Context             map[string]string `json:"@context"`
	Type                string            `json:"@type"`
	AssetID             string            `json:"assetId"`
	ContractID          string            `json:"contractId"`
	CounterPartyAddress string            `json:"counterPartyAddress"`
	Protocol            string            `json:"protocol"`
	TransferType        string            `json:"transferType"`
	DataDestination     map[string]string `json:"dataDestination"`
}

// EDRFilter narrows an EDR entry listing; exactly one field should be set
type EDRFilter struct {
	NegotiationID string
	AssetID       string
	Offset        int
	Limit         int
}

// EDREntry is one row of the connector's EDR entry listing
type EDREntry struct {
	TransferProcessID string
	NegotiationID     string
	AgreementID       string
	AssetID           string
	ProviderID        string
	CreatedAt         int64
}

// DataAddress is the dereferenced EDR credential for a transfer process
type DataAddress struct {
	Endpoint      string
	Authorization string
}

func decodeEDREntry(m map[string]any) EDREntry {
	return EDREntry{
		TransferProcessID: firstString(m, "transferProcessId", "edc:transferProcessId"),
		NegotiationID:     firstString(m, "contractNegotiationId", "edc:contractNegotiationId"),
		AgreementID:       firstString(m, "agreementId", "edc:agreementId"),
		AssetID:           firstString(m, "assetId", "edc:assetId"),
		ProviderID:        firstString(m, "providerId", "edc:providerId"),
		CreatedAt:         firstInt64(m, "createdAt", "edc:createdAt"),
	}
}

func decodeNegotiation(m map[string]any) Negotiation {
	return Negotiation{
		ID:          firstString(m, "@id"),
		State:       firstString(m, "state", "edc:state"),
		AgreementID: firstString(m, "contractAgreementId", "edc:contractAgreementId"),
		ErrorDetail: firstString(m, "errorDetail", "edc:errorDetail"),
	}
}

func decodeDataAddress(m map[string]any) DataAddress {
	return DataAddress{
		Endpoint:      firstString(m, "endpoint", "edc:endpoint"),
		Authorization: firstString(m, "authorization", "edc:authorization"),
	}
}
