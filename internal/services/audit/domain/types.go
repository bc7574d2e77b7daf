// Package domain holds the audit event model shared by recorder and readers
package domain

import "time"

// Kind classifies one audit event
type Kind string

// Lifecycle and cache decision kinds
const (
	KindCacheHit             Kind = "cache_hit"
	KindCacheMiss            Kind = "cache_miss"
	KindCacheInvalidated     Kind = "cache_invalidated"
	KindNegotiationStarted   Kind = "negotiation_started"
	KindNegotiationFinalized Kind = "negotiation_finalized"
	KindNegotiationFailed    Kind = "negotiation_failed"
	KindNegotiationTimeout   Kind = "negotiation_timeout"
	KindTransferStarted      Kind = "transfer_started"
	KindTransferFailed       Kind = "transfer_failed"
	KindEDRIssued            Kind = "edr_issued"
	KindCredentialExpired    Kind = "credential_expired"
)

// Valid reports whether k is one of the declared kinds
func (k Kind) Valid() bool {
	switch k {
	case KindCacheHit, KindCacheMiss, KindCacheInvalidated,
		KindNegotiationStarted, KindNegotiationFinalized, KindNegotiationFailed,
		KindNegotiationTimeout, KindTransferStarted, KindTransferFailed,
		KindEDRIssued, KindCredentialExpired:
		return true
	}
	return false
}

// Event is one negotiation, transfer, or cache decision record
type Event struct {
	ID                  string    `json:"id" example:"0cb32b5a-07b4-4bc3-8f52-6b2f5d2f9b10"`
	At                  time.Time `json:"at" example:"2026-01-02T15:04:05Z"`
	BPN                 string    `json:"bpn,omitempty" example:"BPNL000000000001"`
	CounterpartyAddress string    `json:"counterpartyAddress,omitempty" example:"http://provider:8282"`
	AssetID             string    `json:"assetId,omitempty" example:"asset-1"`
	Kind                Kind      `json:"kind" example:"negotiation_finalized"`
	NegotiationID       string    `json:"negotiationId,omitempty"`
	TransferID          string    `json:"transferId,omitempty"`
	Detail              string    `json:"detail,omitempty"`
	DurationMS          int64     `json:"durationMs,omitempty" example:"2150"`
}

// Query filters the event listing; zero values mean unfiltered
type Query struct {
	Since time.Time
	Until time.Time
	BPN   string
	Kind  Kind
	Limit int
}
