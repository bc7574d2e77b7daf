// Package repo provides the persistent EDR store for multi-instance
// deployments
package repo

import (
	"context"
	"errors"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/repokit"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for the edr_cache table
func NewPG() repokit.Binder[domain.CachePort] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.CachePort { return &pg{q: q} }

// Get returns the live entry for k. Expiry is enforced by the database
// clock, so multiple instances agree on liveness.
func (s *pg) Get(ctx context.Context, k domain.Key) (domain.Entry, bool, error) {
	const sql = `SELECT negotiation_id, transfer_id, data_plane_url, control_plane_url,
	                edr_asset_id, auth_token, created_at, expires_at,
	                policy_fingerprint, requester
	             FROM edr_cache
	             WHERE counterparty_id = $1 AND asset_id = $2 AND expires_at > now()`

	e, err := store.One(ctx, s.q, scanEntry(k), sql, k.CounterpartyID, k.AssetID)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.Entry{}, false, nil
		}
		return domain.Entry{}, false, perr.FromPostgresf(err, "edr cache get %s/%s", k.CounterpartyID, k.AssetID)
	}
	return e, true, nil
}

// scanEntry maps one edr_cache row onto an Entry carrying k
func scanEntry(k domain.Key) func(store.Row) (domain.Entry, error) {
	return func(row store.Row) (domain.Entry, error) {
		e := domain.Entry{Key: k}
		err := row.Scan(
			&e.EDR.NegotiationID, &e.EDR.TransferID, &e.EDR.DataPlaneURL, &e.EDR.ControlPlaneURL,
			&e.EDR.AssetID, &e.EDR.AuthToken, &e.EDR.CreatedAt, &e.ExpiresAt,
			&e.PolicyFingerprint, &e.Requester,
		)
		return e, err
	}
}

// Put upserts the entry on its key; a renegotiated EDR replaces the old row.
// Instances racing on the same key can deadlock on the upsert, so one
// retry is attempted before the error is surfaced
func (s *pg) Put(ctx context.Context, e domain.Entry) error {
	const sql = `INSERT INTO edr_cache
	                (counterparty_id, asset_id, negotiation_id, transfer_id,
	                 data_plane_url, control_plane_url, edr_asset_id, auth_token,
	                 created_at, expires_at, policy_fingerprint, requester)
	             VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	             ON CONFLICT (counterparty_id, asset_id) DO UPDATE SET
	                negotiation_id = EXCLUDED.negotiation_id,
	                transfer_id = EXCLUDED.transfer_id,
	                data_plane_url = EXCLUDED.data_plane_url,
	                control_plane_url = EXCLUDED.control_plane_url,
	                edr_asset_id = EXCLUDED.edr_asset_id,
	                auth_token = EXCLUDED.auth_token,
	                created_at = EXCLUDED.created_at,
	                expires_at = EXCLUDED.expires_at,
	                policy_fingerprint = EXCLUDED.policy_fingerprint,
	                requester = EXCLUDED.requester`

	args := []any{
		e.Key.CounterpartyID, e.Key.AssetID, e.EDR.NegotiationID, e.EDR.TransferID,
		e.EDR.DataPlaneURL, e.EDR.ControlPlaneURL, e.EDR.AssetID, e.EDR.AuthToken,
		e.EDR.CreatedAt, e.ExpiresAt, e.PolicyFingerprint, e.Requester,
	}
	_, err := s.q.Exec(ctx, sql, args...)
	if err != nil && perr.IsRetryable(err) {
		_, err = s.q.Exec(ctx, sql, args...)
	}
	return perr.FromPostgresf(err, "edr cache put %s/%s", e.Key.CounterpartyID, e.Key.AssetID)
}

// Delete removes the entry for k if present
func (s *pg) Delete(ctx context.Context, k domain.Key) error {
	const sql = `DELETE FROM edr_cache WHERE counterparty_id = $1 AND asset_id = $2`
	_, err := s.q.Exec(ctx, sql, k.CounterpartyID, k.AssetID)
	return perr.FromPostgresf(err, "edr cache delete %s/%s", k.CounterpartyID, k.AssetID)
}
