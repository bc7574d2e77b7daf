package service

import (
	"context"
	"testing"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

func catalogGateway(got *connector.CatalogQuery, res connector.CatalogResult) *fakeGateway {
	return &fakeGateway{
		queryCatalog: func(_ context.Context, q connector.CatalogQuery) (connector.CatalogResult, error) {
			if got != nil {
				*got = q
			}
			return res, nil
		},
	}
}

func TestResolveOffer_SelectsSingleOffer(t *testing.T) {
	t.Parallel()

	var got connector.CatalogQuery
	gw := catalogGateway(&got, catalogWith(datasetDoc("asset-1", policyDoc("offer-1", "traceability:1.0"))))
	svc := New(gw, newFakeStore(), nil, Config{})

	offer, err := svc.ResolveOffer(context.Background(), testCounterparty(),
		domain.AssetDescriptor{DCTType: "cx-taxo:PartTypeInformation"}, nil)
	if err != nil {
		t.Fatalf("resolve offer: %v", err)
	}
	if offer.OfferID != "offer-1" || offer.AssetID != "asset-1" {
		t.Fatalf("offer = %+v", offer)
	}
	if len(offer.Fingerprint) != 64 {
		t.Fatalf("fingerprint = %q", offer.Fingerprint)
	}
	if offer.Policy == nil {
		t.Fatalf("policy not carried")
	}

	if got.Filter == nil {
		t.Fatalf("no catalog filter sent")
	}
	if got.Filter.OperandLeft != connector.OperandTypeID || got.Filter.Operator != "=" {
		t.Fatalf("filter = %+v, want dct:type equality", got.Filter)
	}
	if got.Filter.OperandRight != "cx-taxo:PartTypeInformation" {
		t.Fatalf("filter operand = %v", got.Filter.OperandRight)
	}
}

func TestResolveOffer_FiltersByAssetIDWhenGiven(t *testing.T) {
	t.Parallel()

	var got connector.CatalogQuery
	gw := catalogGateway(&got, catalogWith(datasetDoc("asset-9", policyDoc("offer-9", "traceability:1.0"))))
	svc := New(gw, newFakeStore(), nil, Config{})

	offer, err := svc.ResolveOffer(context.Background(), testCounterparty(),
		domain.AssetDescriptor{DCTType: "cx-taxo:PartTypeInformation", AssetID: "asset-9"}, nil)
	if err != nil {
		t.Fatalf("resolve offer: %v", err)
	}
	if offer.AssetID != "asset-9" {
		t.Fatalf("offer = %+v", offer)
	}
	if got.Filter == nil || got.Filter.OperandLeft != connector.OperandAssetID {
		t.Fatalf("filter = %+v, want asset id equality", got.Filter)
	}
}

func TestResolveOffer_SelectionErrors(t *testing.T) {
	t.Parallel()

	pol := policyDoc("offer-1", "traceability:1.0")
	cases := []struct {
		name string
		res  connector.CatalogResult
		code perr.ErrorCode
	}{
		{"empty catalog", catalogWith(), perr.ErrorCodeNoOfferFound},
		{"two datasets", catalogWith(datasetDoc("a", pol), datasetDoc("b", pol)), perr.ErrorCodeAmbiguousOffer},
		{"no policy", catalogWith(datasetDoc("a")), perr.ErrorCodeNoOfferFound},
		{"two policies", catalogWith(datasetDoc("a", pol, policyDoc("offer-2", "x"))), perr.ErrorCodeAmbiguousOffer},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := New(catalogGateway(nil, tc.res), newFakeStore(), nil, Config{})
			_, err := svc.ResolveOffer(context.Background(), testCounterparty(),
				domain.AssetDescriptor{DCTType: "cx-taxo:PartTypeInformation"}, nil)
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want code %v", err, tc.code)
			}
		})
	}
}

func TestResolveOffer_AllowListFiltersPolicies(t *testing.T) {
	t.Parallel()

	gw := catalogGateway(nil, catalogWith(datasetDoc("asset-1", policyDoc("offer-1", "traceability:1.0"))))
	svc := New(gw, newFakeStore(), nil, Config{})
	cp := testCounterparty()
	d := domain.AssetDescriptor{DCTType: "cx-taxo:PartTypeInformation"}

	// matching constraint set
	if _, err := svc.ResolveOffer(context.Background(), cp, d, []domain.PolicyConstraint{
		{"cx-policy:FrameworkAgreement": "traceability:1.0"},
	}); err != nil {
		t.Fatalf("matching allow list rejected: %v", err)
	}

	// one of several sets matches
	if _, err := svc.ResolveOffer(context.Background(), cp, d, []domain.PolicyConstraint{
		{"cx-policy:FrameworkAgreement": "quality:1.0"},
		{"cx-policy:FrameworkAgreement": "traceability:1.0"},
	}); err != nil {
		t.Fatalf("alternative allow list rejected: %v", err)
	}

	// no set matches
	_, err := svc.ResolveOffer(context.Background(), cp, d, []domain.PolicyConstraint{
		{"cx-policy:FrameworkAgreement": "quality:1.0"},
	})
	if !perr.IsCode(err, perr.ErrorCodeNoOfferFound) {
		t.Fatalf("err = %v, want no offer found", err)
	}

	// a set with an operand the offer never declares
	_, err = svc.ResolveOffer(context.Background(), cp, d, []domain.PolicyConstraint{
		{"cx-policy:Membership": "active"},
	})
	if !perr.IsCode(err, perr.ErrorCodeNoOfferFound) {
		t.Fatalf("err = %v, want no offer found", err)
	}
}

func TestPolicyAllowed_Forms(t *testing.T) {
	t.Parallel()

	nested := map[string]any{
		"@id": "offer-1",
		"odrl:permission": []any{
			map[string]any{
				"odrl:constraint": map[string]any{
					"odrl:and": []any{
						map[string]any{
							"odrl:leftOperand":  map[string]any{"@id": "cx-policy:FrameworkAgreement"},
							"odrl:rightOperand": "traceability:1.0",
						},
						map[string]any{
							"odrl:leftOperand":  "cx-policy:UsagePurpose",
							"odrl:rightOperand": map[string]any{"@value": "cx.core.industrycore:1"},
						},
					},
				},
			},
		},
	}

	cases := []struct {
		name  string
		allow []domain.PolicyConstraint
		want  bool
	}{
		{"both pairs", []domain.PolicyConstraint{{
			"cx-policy:FrameworkAgreement": "traceability:1.0",
			"cx-policy:UsagePurpose":       map[string]any{"@value": "cx.core.industrycore:1"},
		}}, true},
		{"string form left operand", []domain.PolicyConstraint{{
			"cx-policy:UsagePurpose": map[string]any{"@value": "cx.core.industrycore:1"},
		}}, true},
		{"wrong right operand", []domain.PolicyConstraint{{
			"cx-policy:UsagePurpose": "cx.core.industrycore:1",
		}}, false},
		{"partial mismatch fails whole set", []domain.PolicyConstraint{{
			"cx-policy:FrameworkAgreement": "traceability:1.0",
			"cx-policy:Membership":         "active",
		}}, false},
		{"empty set matches anything", []domain.PolicyConstraint{{}}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := policyAllowed(nested, tc.allow); got != tc.want {
				t.Fatalf("policyAllowed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	t.Parallel()

	if got := likePattern("PartType"); got != "%PartType%" {
		t.Fatalf("likePattern = %q", got)
	}
	if got := likePattern("%already%"); got != "%already%" {
		t.Fatalf("likePattern = %q", got)
	}
}
