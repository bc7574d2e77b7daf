// Package domain defines the EDR engine's value types and ports
package domain

import "time"

// Counterparty identifies the remote connector a request negotiates with.
// Immutable per request, supplied by the caller.
type Counterparty struct {
	// Address is the counterparty control plane base URL; the DSP suffix is
	// appended by the gateway when missing
	Address string
	// BPN is the business partner number, used as policy assigner and as the
	// counterparty half of the cache key
	BPN string
	// APIKey optionally overrides the management API key for every gateway
	// call made on behalf of this counterparty's flow
	APIKey string
}

// AssetDescriptor names the asset to resolve; at least one field must be set
type AssetDescriptor struct {
	// DCTType matches the dct:type @id of a dataset
	DCTType string
	// AssetID addresses one dataset directly and wins over DCTType
	AssetID string
}

// Identity returns the asset half of the cache key before resolution
func (d AssetDescriptor) Identity() string {
	if d.AssetID != "" {
		return d.AssetID
	}
	return d.DCTType
}

// NegotiationState is a contract negotiation state as reported by the
// connector. Unknown intermediate states (AGREEING, VERIFYING, ...) are
// carried verbatim and treated as non-terminal.
type NegotiationState string

// Contract negotiation states
const (
	NegotiationInitiated  NegotiationState = "INITIATED"
	NegotiationRequested  NegotiationState = "REQUESTED"
	NegotiationAgreed     NegotiationState = "AGREED"
	NegotiationVerified   NegotiationState = "VERIFIED"
	NegotiationFinalized  NegotiationState = "FINALIZED"
	NegotiationTerminated NegotiationState = "TERMINATED"
)

// Terminal reports whether the negotiation can make no further progress
func (s NegotiationState) Terminal() bool {
	return s == NegotiationFinalized || s == NegotiationTerminated
}

// Succeeded reports whether the negotiation produced an agreement
func (s NegotiationState) Succeeded() bool { return s == NegotiationFinalized }

// TransferState is a transfer process state as reported by the connector
type TransferState string

// Transfer process states
const (
	TransferRequested  TransferState = "REQUESTED"
	TransferStarted    TransferState = "STARTED"
	TransferCompleted  TransferState = "COMPLETED"
	TransferTerminated TransferState = "TERMINATED"
)

// Failed reports whether the transfer was terminated by either side
func (s TransferState) Failed() bool { return s == TransferTerminated }

// Usable reports whether an EDR issued for this transfer may be used
func (s TransferState) Usable() bool {
	return s == TransferStarted || s == TransferCompleted
}

// Offer is one negotiable dataset offer selected from a catalog
type Offer struct {
	OfferID string
	AssetID string
	// Policy is the odrl:hasPolicy body as found in the catalog
	Policy map[string]any
	// Fingerprint identifies the policy content; see Fingerprint()
	Fingerprint string
}

// PolicyConstraint is one allow-list entry: leftOperand @id -> rightOperand.
// An offer policy satisfies the constraint when it contains every pair.
type PolicyConstraint map[string]any

// EDR is the endpoint data reference produced by a finished negotiation
type EDR struct {
	NegotiationID   string    `json:"negotiationId" example:"nego-5c2d"`
	TransferID      string    `json:"transferId" example:"tp-91af"`
	DataPlaneURL    string    `json:"dataPlaneUrl" example:"http://provider-dataplane:8185/api/public"`
	ControlPlaneURL string    `json:"controlPlaneUrl" example:"http://provider-controlplane:8282"`
	AssetID         string    `json:"assetId" example:"asset-1"`
	CreatedAt       time.Time `json:"createdAt"`
	// AuthToken is the data plane credential exactly as issued; it is sent
	// as the Authorization header without a scheme prefix
	AuthToken string `json:"authToken"`
}

// AnonymousRequester tags cache entries negotiated without a caller identity
const AnonymousRequester = "anonymous"

// Key addresses one cache slot
type Key struct {
	CounterpartyID string
	AssetID        string
}

// KeyFor builds the cache key for a counterparty and asset descriptor
func KeyFor(cp Counterparty, d AssetDescriptor) Key {
	return Key{CounterpartyID: cp.BPN, AssetID: d.Identity()}
}

// Entry is one cached EDR with its invalidation metadata. The cache owns
// entries; callers always receive copies.
type Entry struct {
	Key               Key
	EDR               EDR
	ExpiresAt         time.Time
	PolicyFingerprint string
	Requester         string
}

// Expired reports whether the entry has outlived its TTL at time now
func (e Entry) Expired(now time.Time) bool { return !now.Before(e.ExpiresAt) }
