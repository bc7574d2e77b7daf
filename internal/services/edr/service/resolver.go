package service

import (
	"context"
	"reflect"
	"strings"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// ResolveOffer queries the counterparty catalog for the descriptor and
// selects the single negotiable offer. Zero matches and multiple matches are
// both errors; callers that want a browsable list use Catalog instead
func (s *Svc) ResolveOffer(
	ctx context.Context,
	cp domain.Counterparty,
	d domain.AssetDescriptor,
	allow []domain.PolicyConstraint,
) (domain.Offer, error) {
	q := connector.CatalogQuery{
		CounterpartyAddress: cp.Address,
		CounterpartyID:      cp.BPN,
	}
	var f connector.Criterion
	if d.AssetID != "" {
		f = connector.AssetFilter(d.AssetID)
	} else {
		f = connector.TypeFilter(d.DCTType)
	}
	q.Filter = &f

	res, err := s.gateway(cp).QueryCatalog(ctx, q)
	if err != nil {
		return domain.Offer{}, err
	}

	datasets := res.Datasets()
	switch {
	case len(datasets) == 0:
		return domain.Offer{}, perr.NoOfferFoundf("no dataset for %q in catalog of %s", d.Identity(), cp.BPN)
	case len(datasets) > 1:
		return domain.Offer{}, perr.AmbiguousOfferf(
			"%d datasets for %q in catalog of %s; narrow the descriptor", len(datasets), d.Identity(), cp.BPN)
	}
	dataset := datasets[0]
	assetID := connector.DatasetID(dataset)

	policies := connector.DatasetPolicies(dataset)
	switch {
	case len(policies) == 0:
		return domain.Offer{}, perr.NoOfferFoundf("dataset %q carries no offer policy", assetID)
	case len(policies) > 1:
		return domain.Offer{}, perr.AmbiguousOfferf("dataset %q carries %d offer policies", assetID, len(policies))
	}
	policy := policies[0]

	if len(allow) > 0 && !policyAllowed(policy, allow) {
		return domain.Offer{}, perr.NoOfferFoundf("offer policy for %q matches none of the allowed policies", assetID)
	}

	offerID, _ := policy["@id"].(string)
	return domain.Offer{
		OfferID:     offerID,
		AssetID:     assetID,
		Policy:      policy,
		Fingerprint: domain.Fingerprint(policy),
	}, nil
}

// policyAllowed reports whether every pair of at least one allowed constraint
// set appears among the offer's constraints
func policyAllowed(policy map[string]any, allow []domain.PolicyConstraint) bool {
	offered := map[string]any{}
	collectConstraints(policy, offered)
	for _, want := range allow {
		matched := true
		for left, right := range want {
			got, ok := offered[left]
			if !ok || !reflect.DeepEqual(got, right) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// collectConstraints walks the policy body and gathers every
// odrl:leftOperand -> odrl:rightOperand pair, keyed by operand id
func collectConstraints(node any, out map[string]any) {
	switch t := node.(type) {
	case map[string]any:
		if lo, ok := t["odrl:leftOperand"]; ok {
			if id := operandID(lo); id != "" {
				out[id] = t["odrl:rightOperand"]
			}
		}
		for _, v := range t {
			collectConstraints(v, out)
		}
	case []any:
		for _, v := range t {
			collectConstraints(v, out)
		}
	}
}

// operandID unwraps a left operand, which is either a bare string or an
// object carrying @id
func operandID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		id, _ := t["@id"].(string)
		return id
	}
	return ""
}

// likePattern wraps a plain value for a SQL-style like criterion. Values that
// already carry a wildcard pass through
func likePattern(v string) string {
	if strings.Contains(v, "%") {
		return v
	}
	return "%" + v + "%"
}
