// Package service implements the data-plane proxy
package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/scope"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	audit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	edrdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/domain"
)

const (
	defaultTimeout = 30 * time.Second

	// maxForwardBody bounds upstream payloads held in memory
	maxForwardBody = 8 << 20
)

var _ domain.ForwarderPort = (*Svc)(nil)

// Config carries runtime knobs for the forwarder
type Config struct {
	Timeout time.Duration // per forwarded request

	// ForwardHeaders are extra caller headers allowed through to the data
	// plane, on top of the builtin Accept, Content-Type, and Edc-* set
	ForwardHeaders []string
}

// Svc implements domain.ForwarderPort
type Svc struct {
	edr     edrdom.RequesterPort
	http    *http.Client
	audit   audit.RecorderPort
	cfg     Config
	forward map[string]struct{}
	log     logger.Logger
}

// New constructs the proxy over the EDR facade. rec may be nil
func New(edr edrdom.RequesterPort, rec audit.RecorderPort, cfg Config) *Svc {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	forward := make(map[string]struct{}, len(cfg.ForwardHeaders))
	for _, h := range cfg.ForwardHeaders {
		forward[http.CanonicalHeaderKey(h)] = struct{}{}
	}
	return &Svc{
		edr:     edr,
		http:    &http.Client{Timeout: cfg.Timeout},
		audit:   rec,
		cfg:     cfg,
		forward: forward,
		log:     *logger.Named("proxy"),
	}
}

// Forward runs one data-plane request with the EDR's token attached. The
// token goes out exactly as issued, no scheme prefix. Upstream statuses pass
// through except 401/403, which invalidate the cache key and map to
// CodeCredentialExpired
func (s *Svc) Forward(ctx context.Context, key edrdom.Key, edr edrdom.EDR, req domain.ForwardRequest) (domain.ForwardResult, error) {
	ctx = scope.With(ctx, map[string]string{"bpn": key.CounterpartyID, "asset": edr.AssetID})
	u := joinURL(edr.DataPlaneURL, req.Path)
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return domain.ForwardResult{}, perr.Newf(perr.ErrorCodeValidation, "proxy request: %v", err)
	}
	for k, vv := range req.Header {
		if !s.forwardableHeader(k) {
			continue
		}
		for _, v := range vv {
			hreq.Header.Add(k, v)
		}
	}
	if len(req.Body) > 0 && hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Authorization", edr.AuthToken)

	started := time.Now()
	resp, err := s.http.Do(hreq)
	if err != nil {
		return domain.ForwardResult{}, perr.GatewayUnreachablef("data plane %s %s: %v", req.Method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardBody))
	if err != nil {
		return domain.ForwardResult{}, perr.GatewayUnreachablef("data plane %s %s: read: %v", req.Method, u, err)
	}
	s.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("data plane request")

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if ierr := s.edr.Invalidate(ctx, key); ierr != nil {
			s.log.Warn().Err(ierr).
				Str("counterparty", key.CounterpartyID).
				Str("asset", key.AssetID).
				Msg("invalidate after credential rejection failed")
		}
		s.record(ctx, audit.Event{
			Kind:       audit.KindCredentialExpired,
			TransferID: edr.TransferID,
			Detail:     http.StatusText(resp.StatusCode),
		})
		return domain.ForwardResult{}, perr.CredentialExpiredf(
			"data plane rejected the token with %d for %s", resp.StatusCode, key.AssetID)
	}

	return domain.ForwardResult{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   payload,
	}, nil
}

// Request resolves an EDR and forwards. On credential expiry the key is
// already invalidated, so a second resolve negotiates fresh; a second expiry
// goes back to the caller
func (s *Svc) Request(ctx context.Context, in domain.ProxyInput) (domain.ForwardResult, error) {
	resolveIn := edrdom.ResolveInput{
		CounterParty: in.CounterParty,
		Asset:        in.Asset,
		Policies:     in.Policies,
		Requester:    in.Requester,
	}
	key := edrdom.KeyFor(in.CounterParty.Counterparty(), in.Asset.Descriptor())
	fwd := in.ForwardRequest()

	edr, err := s.edr.Resolve(ctx, resolveIn)
	if err != nil {
		return domain.ForwardResult{}, err
	}
	res, err := s.Forward(ctx, key, edr, fwd)
	if err == nil || !perr.IsCode(err, perr.ErrorCodeCredentialExpired) {
		return res, err
	}

	edr, err = s.edr.Resolve(ctx, resolveIn)
	if err != nil {
		return domain.ForwardResult{}, err
	}
	return s.Forward(ctx, key, edr, fwd)
}

func (s *Svc) record(ctx context.Context, ev audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, ev)
}

// forwardableHeader reports whether a caller header may reach the data
// plane. Authorization is always owned by the forwarder
func (s *Svc) forwardableHeader(k string) bool {
	ck := http.CanonicalHeaderKey(k)
	switch ck {
	case "Accept", "Content-Type":
		return true
	}
	if strings.HasPrefix(ck, "Edc-") {
		return true
	}
	_, ok := s.forward[ck]
	return ok
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
