package domain

import (
	"encoding/json"
	"time"
)

// Request and response bodies for the EDR HTTP surface. Field names follow
// the management-API camelCase convention so payloads read the same on both
// sides of the service.

// CatalogInput requests a raw counterparty catalog, optionally filtered
type CatalogInput struct {
	CounterPartyAddress string `json:"counterPartyAddress" validate:"required,url" example:"http://provider-controlplane:8282"`
	CounterPartyID      string `json:"counterPartyId" validate:"required,min=1,max=64" example:"BPNL000000000001"`
	OperandLeft         string `json:"operandLeft,omitempty" validate:"omitempty,min=1,max=256" example:"'http://purl.org/dc/terms/type'.'@id'"`
	OperandRight        string `json:"operandRight,omitempty" validate:"omitempty,min=1,max=512" example:"cx-taxo:DigitalTwinRegistry"`
	Operator            string `json:"operator,omitempty" validate:"omitempty,oneof== like" example:"like"`
	Offset              int    `json:"offset,omitempty" validate:"omitempty,min=0" example:"0"`
	Limit               int    `json:"limit,omitempty" validate:"omitempty,min=1,max=1000" example:"50"`
}

// OfferInput names the offer a negotiation should run against
type OfferInput struct {
	OfferID string          `json:"offerId" validate:"required,min=1,max=512"`
	AssetID string          `json:"assetId" validate:"required,min=1,max=512" example:"asset-1"`
	Policy  json.RawMessage `json:"policy,omitempty" swaggertype:"object"`
}

// NegotiationInput starts a contract negotiation (passthrough surface)
type NegotiationInput struct {
	CounterPartyAddress string     `json:"counterPartyAddress" validate:"required,url"`
	CounterPartyID      string     `json:"counterPartyId" validate:"required,min=1,max=64" example:"BPNL000000000001"`
	Offer               OfferInput `json:"offer" validate:"required"`
}

// NegotiationStartedOut carries the id of a freshly initiated negotiation
type NegotiationStartedOut struct {
	NegotiationID string `json:"negotiationId" example:"nego-5c2d"`
}

// NegotiationStatusOut reports the state of one negotiation
type NegotiationStatusOut struct {
	ID          string `json:"id"`
	State       string `json:"state" example:"FINALIZED"`
	AgreementID string `json:"agreementId,omitempty"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}

// TransferInput starts a transfer process for an existing agreement
type TransferInput struct {
	CounterPartyAddress string `json:"counterPartyAddress" validate:"required,url"`
	CounterPartyID      string `json:"counterPartyId" validate:"required,min=1,max=64"`
	AgreementID         string `json:"agreementId" validate:"required,min=1,max=512"`
	AssetID             string `json:"assetId" validate:"required,min=1,max=512"`
}

// TransferStartedOut carries the id of a freshly initiated transfer
type TransferStartedOut struct {
	TransferID string `json:"transferId" example:"tp-91af"`
}

// TransferStatusOut reports the state of one transfer process
type TransferStatusOut struct {
	ID    string `json:"id"`
	State string `json:"state" example:"STARTED"`
}

// DataAddressOut is the dereferenced EDR credential
type DataAddressOut struct {
	Endpoint      string `json:"endpoint" example:"http://provider-dataplane:8185/api/public"`
	Authorization string `json:"authorization"`
}

// EDRQuery filters the EDR entry listing; set exactly one id
type EDRQuery struct {
	NegotiationID string
	AssetID       string
}

// EDREntryRow is one row of the connector's EDR entry listing
type EDREntryRow struct {
	TransferProcessID string     `json:"transferProcessId"`
	NegotiationID     string     `json:"contractNegotiationId"`
	AgreementID       string     `json:"agreementId"`
	AssetID           string     `json:"assetId"`
	ProviderID        string     `json:"providerId,omitempty"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
}

// CounterpartyInput is the caller-supplied counterparty identity
type CounterpartyInput struct {
	Address string `json:"address" validate:"required,url" example:"http://provider-controlplane:8282"`
	BPN     string `json:"bpn" validate:"required,bpn" example:"BPNL000000000001"`
	APIKey  string `json:"apiKey,omitempty" validate:"omitempty,max=512"`
}

// Counterparty converts the input to the domain value
func (in CounterpartyInput) Counterparty() Counterparty {
	return Counterparty{Address: in.Address, BPN: in.BPN, APIKey: in.APIKey}
}

// AssetInput names the asset to resolve; at least one field must be set
type AssetInput struct {
	DCTType string `json:"dctType,omitempty" validate:"required_without=AssetID,omitempty,min=1,max=512" example:"cx-taxo:DigitalTwinRegistry"`
	AssetID string `json:"assetId,omitempty" validate:"required_without=DCTType,omitempty,min=1,max=512"`
}

// Descriptor converts the input to the domain value
func (in AssetInput) Descriptor() AssetDescriptor {
	return AssetDescriptor{DCTType: in.DCTType, AssetID: in.AssetID}
}

// ResolveInput asks for a usable EDR, negotiating only on a cache miss
type ResolveInput struct {
	CounterParty CounterpartyInput  `json:"counterParty" validate:"required"`
	Asset        AssetInput         `json:"asset" validate:"required"`
	Policies     []PolicyConstraint `json:"policies,omitempty" validate:"omitempty,max=32"`
	Requester    string             `json:"requester,omitempty" validate:"omitempty,max=128" example:"industry-flag-service"`
}

// InvalidateInput removes one cache entry
type InvalidateInput struct {
	CounterPartyID string `json:"counterPartyId" validate:"required,min=1,max=64"`
	AssetID        string `json:"assetId" validate:"required,min=1,max=512"`
}
