package service

import (
	"context"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/scope"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	audit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Negotiate drives one offer through contract negotiation and transfer to a
// usable EDR. Each phase gets its own Timeout budget and is polled at
// PollInterval. The call blocks; callers that need sharing wrap it in the
// cache flight
func (s *Svc) Negotiate(ctx context.Context, cp domain.Counterparty, offer domain.Offer) (domain.EDR, error) {
	gw := s.gateway(cp)
	started := s.now()
	ctx = scope.With(ctx, map[string]string{
		"bpn":          cp.BPN,
		"counterparty": cp.Address,
		"asset":        offer.AssetID,
	})

	negID, err := gw.InitiateNegotiation(ctx, connector.NegotiationRequest{
		CounterpartyAddress: cp.Address,
		CounterpartyID:      cp.BPN,
		OfferID:             offer.OfferID,
		AssetID:             offer.AssetID,
		Policy:              offer.Policy,
	})
	if err != nil {
		return domain.EDR{}, err
	}
	s.record(ctx, audit.Event{Kind: audit.KindNegotiationStarted, NegotiationID: negID})
	s.log.Debug().Str("negotiation_id", negID).Str("asset", offer.AssetID).Msg("negotiation initiated")

	agreementID, err := s.awaitAgreement(ctx, gw, negID)
	if err != nil {
		return domain.EDR{}, err
	}

	transferID, err := gw.InitiateTransfer(ctx, connector.TransferRequest{
		CounterpartyAddress: cp.Address,
		AgreementID:         agreementID,
		AssetID:             offer.AssetID,
	})
	if err != nil {
		return domain.EDR{}, err
	}
	s.record(ctx, audit.Event{
		Kind:          audit.KindTransferStarted,
		NegotiationID: negID,
		TransferID:    transferID,
	})
	s.log.Debug().Str("transfer_id", transferID).Str("agreement_id", agreementID).Msg("transfer initiated")

	da, err := s.awaitDataAddress(ctx, gw, negID, transferID)
	if err != nil {
		return domain.EDR{}, err
	}

	edr := domain.EDR{
		NegotiationID:   negID,
		TransferID:      transferID,
		DataPlaneURL:    da.Endpoint,
		ControlPlaneURL: cp.Address,
		AssetID:         offer.AssetID,
		CreatedAt:       s.now(),
		AuthToken:       da.Authorization,
	}
	s.record(ctx, audit.Event{
		Kind:          audit.KindEDRIssued,
		NegotiationID: negID,
		TransferID:    transferID,
		DurationMS:    s.now().Sub(started).Milliseconds(),
	})
	s.log.Info().
		Str("negotiation_id", negID).
		Str("transfer_id", transferID).
		Str("asset", offer.AssetID).
		Dur("took", s.now().Sub(started)).
		Msg("edr issued")
	return edr, nil
}

// awaitAgreement polls negotiation state until FINALIZED and returns the
// agreement id. TERMINATED and budget exhaustion are terminal errors
func (s *Svc) awaitAgreement(ctx context.Context, gw Gateway, negID string) (string, error) {
	deadline := s.now().Add(s.cfg.Timeout)
	for {
		st, err := gw.GetNegotiationState(ctx, negID)
		if err != nil {
			return "", err
		}
		state := domain.NegotiationState(st)

		switch {
		case state.Succeeded():
			n, err := gw.GetNegotiation(ctx, negID)
			if err != nil {
				return "", err
			}
			if n.AgreementID == "" {
				return "", perr.NegotiationFailedf("negotiation %s finalized without an agreement id", negID)
			}
			s.record(ctx, audit.Event{Kind: audit.KindNegotiationFinalized, NegotiationID: negID})
			return n.AgreementID, nil

		case state.Terminal():
			// errorDetail is best effort; the terminated state alone decides
			n, _ := gw.GetNegotiation(ctx, negID)
			s.record(ctx, audit.Event{
				Kind:          audit.KindNegotiationFailed,
				NegotiationID: negID,
				Detail:        n.ErrorDetail,
			})
			if n.ErrorDetail != "" {
				return "", perr.NegotiationFailedf("negotiation %s terminated: %s", negID, n.ErrorDetail)
			}
			return "", perr.NegotiationFailedf("negotiation %s terminated by provider", negID)
		}

		if !s.now().Before(deadline) {
			s.record(ctx, audit.Event{
				Kind:          audit.KindNegotiationTimeout,
				NegotiationID: negID,
				Detail:        st,
			})
			return "", perr.NegotiationTimeoutf("negotiation %s still %s after %s", negID, st, s.cfg.Timeout)
		}
		s.sleep(s.cfg.PollInterval)
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

// awaitDataAddress polls transfer state until the process is usable and the
// data address is readable. The address can lag the state flip, so a 404
// there keeps polling within the same budget
func (s *Svc) awaitDataAddress(ctx context.Context, gw Gateway, negID, transferID string) (connector.DataAddress, error) {
	deadline := s.now().Add(s.cfg.Timeout)
	for {
		st, err := gw.GetTransferState(ctx, transferID)
		if err != nil {
			return connector.DataAddress{}, err
		}
		state := domain.TransferState(st)

		switch {
		case state.Usable():
			da, err := gw.FetchDataAddress(ctx, transferID)
			if err == nil {
				return da, nil
			}
			if !perr.IsCode(err, perr.ErrorCodeGatewayNotFound) {
				return connector.DataAddress{}, err
			}

		case state.Failed():
			s.record(ctx, audit.Event{
				Kind:          audit.KindTransferFailed,
				NegotiationID: negID,
				TransferID:    transferID,
			})
			return connector.DataAddress{}, perr.NegotiationFailedf("transfer %s terminated by provider", transferID)
		}

		if !s.now().Before(deadline) {
			s.record(ctx, audit.Event{
				Kind:          audit.KindNegotiationTimeout,
				NegotiationID: negID,
				TransferID:    transferID,
				Detail:        st,
			})
			return connector.DataAddress{}, perr.NegotiationTimeoutf("transfer %s still %s after %s", transferID, st, s.cfg.Timeout)
		}
		s.sleep(s.cfg.PollInterval)
		if err := ctx.Err(); err != nil {
			return connector.DataAddress{}, err
		}
	}
}
