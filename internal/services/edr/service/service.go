// Package service implements the EDR engine: offer resolution, negotiation
// orchestration, and the cached resolve facade in front of both
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/scope"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	ptime "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/time"
	audit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/cache"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Gateway is the slice of the management API the engine drives.
// *connector.Client satisfies it
type Gateway interface {
	QueryCatalog(ctx context.Context, q connector.CatalogQuery) (connector.CatalogResult, error)
	InitiateNegotiation(ctx context.Context, r connector.NegotiationRequest) (string, error)
	GetNegotiation(ctx context.Context, id string) (connector.Negotiation, error)
	GetNegotiationState(ctx context.Context, id string) (string, error)
	InitiateTransfer(ctx context.Context, r connector.TransferRequest) (string, error)
	GetTransferState(ctx context.Context, id string) (string, error)
	ListEDRs(ctx context.Context, f connector.EDRFilter) ([]connector.EDREntry, error)
	FetchDataAddress(ctx context.Context, transferID string) (connector.DataAddress, error)
}

// Config carries runtime knobs for polling and caching
type Config struct {
	PollInterval time.Duration // cadence of negotiation and transfer state polls
	Timeout      time.Duration // budget per phase (negotiation, then transfer)
	CacheTTL     time.Duration
	Revalidate   bool // compare cached policy fingerprints against the live catalog on hits
}

const (
	defaultPollInterval = time.Second
	defaultTimeout      = 15 * time.Second
	defaultCacheTTL     = 60 * time.Second
)

var _ domain.RequesterPort = (*Svc)(nil)

// Svc implements domain.RequesterPort
type Svc struct {
	gw    Gateway
	cache *cache.Cache
	audit audit.RecorderPort
	cfg   Config

	// rekey returns a gateway bound to a counterparty-supplied management
	// API key; nil means overrides are ignored
	rekey func(apiKey string) Gateway

	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// New constructs the engine over a gateway and a cache store.
// rec may be nil; recording is then skipped
func New(gw Gateway, store domain.CachePort, rec audit.RecorderPort, cfg Config) *Svc {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	return &Svc{
		gw:    gw,
		cache: cache.New(store),
		audit: rec,
		cfg:   cfg,
		log:   *logger.Named("edr"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Rekey installs the per-counterparty API key override hook
func (s *Svc) Rekey(fn func(apiKey string) Gateway) { s.rekey = fn }

// gateway returns the management client for the counterparty, honoring its
// API key override when one is supplied
func (s *Svc) gateway(cp domain.Counterparty) Gateway {
	if cp.APIKey != "" && s.rekey != nil {
		return s.rekey(cp.APIKey)
	}
	return s.gw
}

func (s *Svc) record(ctx context.Context, ev audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, ev)
}

// Resolve returns a usable EDR for the counterparty/asset pair, serving from
// cache when it can and negotiating inside a per-key flight when it cannot
func (s *Svc) Resolve(ctx context.Context, in domain.ResolveInput) (domain.EDR, error) {
	cp := in.CounterParty.Counterparty()
	d := in.Asset.Descriptor()
	key := domain.KeyFor(cp, d)
	requester := in.Requester
	if requester == "" {
		requester = domain.AnonymousRequester
	}
	// counterparty identity rides the context; the audit recorder picks it
	// up so individual events only carry what varies between them
	ctx = scope.With(ctx, map[string]string{"bpn": cp.BPN, "counterparty": cp.Address})

	e, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return domain.EDR{}, err
	}
	if ok {
		edr, live, err := s.validateHit(ctx, cp, d, in.Policies, e, requester)
		if err != nil {
			return domain.EDR{}, err
		}
		if live {
			s.record(ctx, audit.Event{
				Kind:          audit.KindCacheHit,
				AssetID:       e.EDR.AssetID,
				NegotiationID: e.EDR.NegotiationID,
				TransferID:    e.EDR.TransferID,
			})
			return edr, nil
		}
		// fell out of the cache; negotiate below
	}

	entry, err := s.cache.Do(ctx, key, func(fctx context.Context) (domain.Entry, error) {
		return s.fill(fctx, cp, d, in.Policies, key, requester)
	})
	if err != nil {
		return domain.EDR{}, err
	}
	return entry.EDR, nil
}

// fill runs inside the per-key flight. Waiters that queued behind a finished
// fill re-enter here, so it re-checks the store before negotiating
func (s *Svc) fill(
	ctx context.Context,
	cp domain.Counterparty,
	d domain.AssetDescriptor,
	allow []domain.PolicyConstraint,
	key domain.Key,
	requester string,
) (domain.Entry, error) {
	if e, ok, err := s.cache.Get(ctx, key); err == nil && ok && e.Requester == requester {
		return e, nil
	}

	s.record(ctx, audit.Event{Kind: audit.KindCacheMiss, AssetID: d.Identity()})

	offer, err := s.ResolveOffer(ctx, cp, d, allow)
	if err != nil {
		return domain.Entry{}, err
	}
	edr, err := s.Negotiate(ctx, cp, offer)
	if err != nil {
		return domain.Entry{}, err
	}

	entry := domain.Entry{
		Key:               key,
		EDR:               edr,
		ExpiresAt:         s.now().Add(s.cfg.CacheTTL),
		PolicyFingerprint: offer.Fingerprint,
		Requester:         requester,
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		// the EDR is still good; the next caller just negotiates again
		s.log.Warn().Err(err).
			Str("counterparty", key.CounterpartyID).
			Str("asset", key.AssetID).
			Msg("edr cache write failed")
	}
	return entry, nil
}

// validateHit decides whether a live cache entry may be served. A requester
// change or a policy fingerprint drift evicts the entry and reports a miss
func (s *Svc) validateHit(
	ctx context.Context,
	cp domain.Counterparty,
	d domain.AssetDescriptor,
	allow []domain.PolicyConstraint,
	e domain.Entry,
	requester string,
) (domain.EDR, bool, error) {
	if e.Requester != requester {
		s.evict(ctx, e, "requester changed")
		return domain.EDR{}, false, nil
	}
	if !s.cfg.Revalidate {
		return e.EDR, true, nil
	}

	offer, err := s.ResolveOffer(ctx, cp, d, allow)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeGatewayUnreachable) {
			// catalog unreachable; the cached token is the best answer we
			// have and the data plane is the final arbiter
			s.log.Warn().Err(err).Str("asset", d.Identity()).Msg("revalidation skipped")
			return e.EDR, true, nil
		}
		s.evict(ctx, e, "offer no longer resolvable")
		return domain.EDR{}, false, err
	}
	if offer.Fingerprint != e.PolicyFingerprint {
		s.evict(ctx, e, "policy fingerprint changed")
		return domain.EDR{}, false, nil
	}
	return e.EDR, true, nil
}

func (s *Svc) evict(ctx context.Context, e domain.Entry, reason string) {
	if err := s.cache.Delete(ctx, e.Key); err != nil {
		s.log.Warn().Err(err).
			Str("counterparty", e.Key.CounterpartyID).
			Str("asset", e.Key.AssetID).
			Msg("edr cache evict failed")
	}
	s.record(ctx, audit.Event{
		Kind:          audit.KindCacheInvalidated,
		AssetID:       e.EDR.AssetID,
		NegotiationID: e.EDR.NegotiationID,
		TransferID:    e.EDR.TransferID,
		Detail:        reason,
	})
	s.log.Info().
		Str("counterparty", e.Key.CounterpartyID).
		Str("asset", e.Key.AssetID).
		Str("reason", reason).
		Msg("edr cache entry invalidated")
}

// Invalidate drops the cached EDR for the key. Deleting an absent key is not
// an error
func (s *Svc) Invalidate(ctx context.Context, k domain.Key) error {
	if err := s.cache.Delete(ctx, k); err != nil {
		return err
	}
	s.record(scope.With(ctx, map[string]string{"bpn": k.CounterpartyID}), audit.Event{
		Kind:    audit.KindCacheInvalidated,
		AssetID: k.AssetID,
		Detail:  "explicit invalidation",
	})
	return nil
}

// Catalog runs a raw catalog query and returns the connector's dcat document
func (s *Svc) Catalog(ctx context.Context, in domain.CatalogInput) (json.RawMessage, error) {
	q := connector.CatalogQuery{
		CounterpartyAddress: in.CounterPartyAddress,
		CounterpartyID:      in.CounterPartyID,
		Offset:              in.Offset,
		Limit:               in.Limit,
	}
	if in.OperandLeft != "" {
		f := connector.Criterion{
			OperandLeft:  in.OperandLeft,
			Operator:     in.Operator,
			OperandRight: in.OperandRight,
		}
		if f.Operator == "" {
			f.Operator = "like"
		}
		if f.Operator == "like" {
			f.OperandRight = likePattern(in.OperandRight)
		}
		q.Filter = &f
	}
	res, err := s.gw.QueryCatalog(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Raw, nil
}

// StartNegotiation fires a contract negotiation without waiting on it
func (s *Svc) StartNegotiation(ctx context.Context, in domain.NegotiationInput) (domain.NegotiationStartedOut, error) {
	var policy map[string]any
	if len(in.Offer.Policy) > 0 {
		if err := json.Unmarshal(in.Offer.Policy, &policy); err != nil {
			return domain.NegotiationStartedOut{}, perr.Newf(perr.ErrorCodeValidation, "offer policy must be a JSON object")
		}
	}
	id, err := s.gw.InitiateNegotiation(ctx, connector.NegotiationRequest{
		CounterpartyAddress: in.CounterPartyAddress,
		CounterpartyID:      in.CounterPartyID,
		OfferID:             in.Offer.OfferID,
		AssetID:             in.Offer.AssetID,
		Policy:              policy,
	})
	if err != nil {
		return domain.NegotiationStartedOut{}, err
	}
	ctx = scope.With(ctx, map[string]string{"bpn": in.CounterPartyID, "counterparty": in.CounterPartyAddress})
	s.record(ctx, audit.Event{
		Kind:          audit.KindNegotiationStarted,
		AssetID:       in.Offer.AssetID,
		NegotiationID: id,
	})
	return domain.NegotiationStartedOut{NegotiationID: id}, nil
}

// NegotiationStatus reads one negotiation by id
func (s *Svc) NegotiationStatus(ctx context.Context, id string) (domain.NegotiationStatusOut, error) {
	n, err := s.gw.GetNegotiation(ctx, id)
	if err != nil {
		return domain.NegotiationStatusOut{}, err
	}
	return domain.NegotiationStatusOut{
		ID:          n.ID,
		State:       n.State,
		AgreementID: n.AgreementID,
		ErrorDetail: n.ErrorDetail,
	}, nil
}

// StartTransfer fires a transfer process without waiting on it
func (s *Svc) StartTransfer(ctx context.Context, in domain.TransferInput) (domain.TransferStartedOut, error) {
	id, err := s.gw.InitiateTransfer(ctx, connector.TransferRequest{
		CounterpartyAddress: in.CounterPartyAddress,
		AgreementID:         in.AgreementID,
		AssetID:             in.AssetID,
	})
	if err != nil {
		return domain.TransferStartedOut{}, err
	}
	ctx = scope.With(ctx, map[string]string{"bpn": in.CounterPartyID, "counterparty": in.CounterPartyAddress})
	s.record(ctx, audit.Event{
		Kind:       audit.KindTransferStarted,
		AssetID:    in.AssetID,
		TransferID: id,
	})
	return domain.TransferStartedOut{TransferID: id}, nil
}

// TransferStatus reads one transfer process state by id
func (s *Svc) TransferStatus(ctx context.Context, id string) (domain.TransferStatusOut, error) {
	st, err := s.gw.GetTransferState(ctx, id)
	if err != nil {
		return domain.TransferStatusOut{}, err
	}
	return domain.TransferStatusOut{ID: id, State: st}, nil
}

// EDRs lists cached EDR entries held by the connector
func (s *Svc) EDRs(ctx context.Context, q domain.EDRQuery) ([]domain.EDREntryRow, error) {
	entries, err := s.gw.ListEDRs(ctx, connector.EDRFilter{
		NegotiationID: q.NegotiationID,
		AssetID:       q.AssetID,
	})
	if err != nil {
		return nil, err
	}
	rows := make([]domain.EDREntryRow, 0, len(entries))
	for _, e := range entries {
		var created time.Time
		if e.CreatedAt > 0 {
			created = time.UnixMilli(e.CreatedAt).UTC()
		}
		rows = append(rows, domain.EDREntryRow{
			TransferProcessID: e.TransferProcessID,
			NegotiationID:     e.NegotiationID,
			AgreementID:       e.AgreementID,
			AssetID:           e.AssetID,
			ProviderID:        e.ProviderID,
			CreatedAt:         ptime.Ptr(created),
		})
	}
	return rows, nil
}

// DataAddress fetches the data-plane address for a transfer process
func (s *Svc) DataAddress(ctx context.Context, transferID string) (domain.DataAddressOut, error) {
	da, err := s.gw.FetchDataAddress(ctx, transferID)
	if err != nil {
		return domain.DataAddressOut{}, err
	}
	return domain.DataAddressOut{Endpoint: da.Endpoint, Authorization: da.Authorization}, nil
}
