package domain

import (
	"context"
	"encoding/json"
)

// CachePort is the swappable EDR store. Get must not return expired entries;
// implementations expire lazily. All mutations are atomic per key.
type CachePort interface {
	Get(ctx context.Context, k Key) (Entry, bool, error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, k Key) error
}

// ResolverPort selects exactly one negotiable offer from a catalog
type ResolverPort interface {
	ResolveOffer(ctx context.Context, cp Counterparty, d AssetDescriptor, allow []PolicyConstraint) (Offer, error)
}

// OrchestratorPort drives one negotiation and transfer to a usable EDR
type OrchestratorPort interface {
	Negotiate(ctx context.Context, cp Counterparty, offer Offer) (EDR, error)
}

// RequesterPort is the EDR facade consumed by the HTTP surface and the
// data-plane proxy
type RequesterPort interface {
	// Resolve returns a usable EDR for the key, negotiating at most once
	// concurrently per key
	Resolve(ctx context.Context, in ResolveInput) (EDR, error)
	// Invalidate removes the cache entry for the key if present
	Invalidate(ctx context.Context, k Key) error

	// Passthrough management operations
	Catalog(ctx context.Context, in CatalogInput) (json.RawMessage, error)
	StartNegotiation(ctx context.Context, in NegotiationInput) (NegotiationStartedOut, error)
	NegotiationStatus(ctx context.Context, id string) (NegotiationStatusOut, error)
	StartTransfer(ctx context.Context, in TransferInput) (TransferStartedOut, error)
	TransferStatus(ctx context.Context, id string) (TransferStatusOut, error)
	EDRs(ctx context.Context, q EDRQuery) ([]EDREntryRow, error)
	DataAddress(ctx context.Context, transferID string) (DataAddressOut, error)
}
