package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	audit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// stateSequence returns each state in turn and then sticks on the last one
func stateSequence(states ...string) func(context.Context, string) (string, error) {
	i := 0
	return func(context.Context, string) (string, error) {
		st := states[i]
		if i < len(states)-1 {
			i++
		}
		return st, nil
	}
}

// manualClock pins the service clock and advances it through the sleep seam,
// so poll loops run instantly and deterministically
func manualClock(svc *Svc) *[]time.Duration {
	sleeps := &[]time.Duration{}
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
		now = now.Add(d)
	}
	return sleeps
}

func testCounterparty() domain.Counterparty {
	return domain.Counterparty{Address: "http://provider:8282", BPN: "BPNL000000000001"}
}

func testOffer() domain.Offer {
	policy := policyDoc("offer-1", "traceability:1.0")
	return domain.Offer{
		OfferID:     "offer-1",
		AssetID:     "asset-1",
		Policy:      policy,
		Fingerprint: domain.Fingerprint(policy),
	}
}

func TestNegotiate_FinalizesAndIssuesEDR(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			if r.OfferID != "offer-1" || r.AssetID != "asset-1" || r.CounterpartyID != "BPNL000000000001" {
				t.Errorf("negotiation request = %+v", r)
			}
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("REQUESTED", "AGREED", "FINALIZED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, State: "FINALIZED", AgreementID: "agr-1"}, nil
		},
		initiateTransfer: func(_ context.Context, r connector.TransferRequest) (string, error) {
			if r.AgreementID != "agr-1" || r.AssetID != "asset-1" {
				t.Errorf("transfer request = %+v", r)
			}
			return "tp-1", nil
		},
		getTransferState: stateSequence("REQUESTED", "STARTED"),
		fetchDataAddress: func(_ context.Context, transferID string) (connector.DataAddress, error) {
			return connector.DataAddress{Endpoint: "http://dp/api/public", Authorization: "tok-1"}, nil
		},
	}
	rec := &captureRecorder{}
	svc := New(gw, newFakeStore(), rec, Config{PollInterval: time.Second, Timeout: 15 * time.Second})
	sleeps := manualClock(svc)

	edr, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if err != nil {
		t.Fatalf("negotiate: %v", err)
	}
	if edr.NegotiationID != "neg-1" || edr.TransferID != "tp-1" {
		t.Fatalf("edr ids = %+v", edr)
	}
	if edr.DataPlaneURL != "http://dp/api/public" || edr.AuthToken != "tok-1" {
		t.Fatalf("edr address = %+v", edr)
	}
	if edr.ControlPlaneURL != "http://provider:8282" {
		t.Fatalf("control plane url = %q", edr.ControlPlaneURL)
	}

	// two polls to finalize, one to start the transfer
	if len(*sleeps) != 3 {
		t.Fatalf("sleeps = %v, want 3 poll intervals", *sleeps)
	}
	for _, d := range *sleeps {
		if d != time.Second {
			t.Fatalf("poll interval = %s", d)
		}
	}

	want := []audit.Kind{
		audit.KindNegotiationStarted,
		audit.KindNegotiationFinalized,
		audit.KindTransferStarted,
		audit.KindEDRIssued,
	}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("audit kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit kinds = %v, want %v", got, want)
		}
	}
}

func TestNegotiate_TerminatedCarriesErrorDetail(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("REQUESTED", "TERMINATED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, State: "TERMINATED", ErrorDetail: "policy not accepted"}, nil
		},
	}
	rec := &captureRecorder{}
	svc := New(gw, newFakeStore(), rec, Config{})
	manualClock(svc)

	_, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if !perr.IsCode(err, perr.ErrorCodeNegotiationFailed) {
		t.Fatalf("err = %v, want negotiation failed", err)
	}
	if !strings.Contains(err.Error(), "policy not accepted") {
		t.Fatalf("err %q missing provider detail", err)
	}
	if !rec.has(audit.KindNegotiationFailed) {
		t.Fatalf("audit kinds = %v", rec.kinds())
	}
}

func TestNegotiate_StuckNegotiationTimesOut(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("REQUESTED"),
	}
	rec := &captureRecorder{}
	svc := New(gw, newFakeStore(), rec, Config{PollInterval: time.Second, Timeout: 5 * time.Second})
	sleeps := manualClock(svc)

	_, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if !perr.IsCode(err, perr.ErrorCodeNegotiationTimeout) {
		t.Fatalf("err = %v, want negotiation timeout", err)
	}
	if len(*sleeps) != 5 {
		t.Fatalf("sleeps = %d, want exactly the 5s budget at 1s cadence", len(*sleeps))
	}
	if !rec.has(audit.KindNegotiationTimeout) {
		t.Fatalf("audit kinds = %v", rec.kinds())
	}
}

func TestNegotiate_FinalizedWithoutAgreementFails(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("FINALIZED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, State: "FINALIZED"}, nil
		},
	}
	svc := New(gw, newFakeStore(), nil, Config{})
	manualClock(svc)

	_, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if !perr.IsCode(err, perr.ErrorCodeNegotiationFailed) {
		t.Fatalf("err = %v, want negotiation failed", err)
	}
}

func TestNegotiate_TransferTerminatedFails(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("FINALIZED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, AgreementID: "agr-1"}, nil
		},
		initiateTransfer: func(_ context.Context, r connector.TransferRequest) (string, error) {
			return "tp-1", nil
		},
		getTransferState: stateSequence("REQUESTED", "TERMINATED"),
	}
	rec := &captureRecorder{}
	svc := New(gw, newFakeStore(), rec, Config{})
	manualClock(svc)

	_, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if !perr.IsCode(err, perr.ErrorCodeNegotiationFailed) {
		t.Fatalf("err = %v, want negotiation failed", err)
	}
	if !rec.has(audit.KindTransferFailed) {
		t.Fatalf("audit kinds = %v", rec.kinds())
	}
}

func TestNegotiate_DataAddressLagIsPolledThrough(t *testing.T) {
	t.Parallel()

	fetches := 0
	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("FINALIZED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, AgreementID: "agr-1"}, nil
		},
		initiateTransfer: func(_ context.Context, r connector.TransferRequest) (string, error) {
			return "tp-1", nil
		},
		getTransferState: stateSequence("STARTED"),
		fetchDataAddress: func(_ context.Context, transferID string) (connector.DataAddress, error) {
			fetches++
			if fetches < 3 {
				return connector.DataAddress{}, perr.GatewayNotFoundf("edr entry for %s not found", transferID)
			}
			return connector.DataAddress{Endpoint: "http://dp/api/public", Authorization: "tok-1"}, nil
		},
	}
	svc := New(gw, newFakeStore(), nil, Config{PollInterval: time.Second, Timeout: 10 * time.Second})
	sleeps := manualClock(svc)

	edr, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if err != nil {
		t.Fatalf("negotiate: %v", err)
	}
	if edr.AuthToken != "tok-1" {
		t.Fatalf("edr = %+v", edr)
	}
	if fetches != 3 {
		t.Fatalf("fetches = %d, want 3", fetches)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2", *sleeps)
	}
}

func TestNegotiate_DataAddressNeverAppearsTimesOut(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("FINALIZED"),
		getNegotiation: func(_ context.Context, id string) (connector.Negotiation, error) {
			return connector.Negotiation{ID: id, AgreementID: "agr-1"}, nil
		},
		initiateTransfer: func(_ context.Context, r connector.TransferRequest) (string, error) {
			return "tp-1", nil
		},
		getTransferState: stateSequence("STARTED"),
		fetchDataAddress: func(_ context.Context, transferID string) (connector.DataAddress, error) {
			return connector.DataAddress{}, perr.GatewayNotFoundf("edr entry for %s not found", transferID)
		},
	}
	svc := New(gw, newFakeStore(), nil, Config{PollInterval: time.Second, Timeout: 3 * time.Second})
	manualClock(svc)

	_, err := svc.Negotiate(context.Background(), testCounterparty(), testOffer())
	if !perr.IsCode(err, perr.ErrorCodeNegotiationTimeout) {
		t.Fatalf("err = %v, want negotiation timeout", err)
	}
}

func TestNegotiate_CancelledContextStopsPolling(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{
		initiateNegotiation: func(_ context.Context, r connector.NegotiationRequest) (string, error) {
			return "neg-1", nil
		},
		getNegotiationState: stateSequence("REQUESTED"),
	}
	svc := New(gw, newFakeStore(), nil, Config{PollInterval: time.Second, Timeout: time.Hour})
	svc.now = time.Now
	svc.sleep = func(time.Duration) { cancel() }

	_, err := svc.Negotiate(ctx, testCounterparty(), testOffer())
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
