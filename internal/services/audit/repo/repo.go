// Package repo persists audit events in ClickHouse
package repo

import (
	"context"
	"strings"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
)

// Storage defines the audit event store
type Storage interface {
	Append(ctx context.Context, events []domain.Event) error
	List(ctx context.Context, q domain.Query) ([]domain.Event, error)
}

// insertTarget pins the column order for batched writes. The table is
// expected to be MergeTree ordered by (at, id), typically with a TTL on at
const insertTarget = `edc_audit_events
	(id, at, bpn, counterparty_address, asset_id, kind,
	 negotiation_id, transfer_id, detail, duration_ms)`

// CH is the event store over the clickhouse seam
type CH struct{ ch store.Clickhouse }

var _ Storage = (*CH)(nil)

// NewCH constructs the event store
func NewCH(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// Append writes events as one batch
func (r *CH) Append(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			e.ID, e.At, e.BPN, e.CounterpartyAddress, e.AssetID, string(e.Kind),
			e.NegotiationID, e.TransferID, e.Detail, e.DurationMS,
		})
	}
	return r.ch.Insert(ctx, insertTarget, rows)
}

// List returns matching events newest first. The caller clamps q.Limit
func (r *CH) List(ctx context.Context, q domain.Query) ([]domain.Event, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return "?" }

	sb.WriteString(`
		SELECT id, at, bpn, counterparty_address, asset_id, kind,
			negotiation_id, transfer_id, detail, duration_ms
		FROM edc_audit_events
		WHERE 1 = 1
`)
	if !q.Since.IsZero() {
		sb.WriteString("  AND at >= " + arg(q.Since) + "\n")
	}
	if !q.Until.IsZero() {
		sb.WriteString("  AND at < " + arg(q.Until) + "\n")
	}
	if q.BPN != "" {
		sb.WriteString("  AND bpn = " + arg(q.BPN) + "\n")
	}
	if q.Kind != "" {
		sb.WriteString("  AND kind = " + arg(string(q.Kind)) + "\n")
	}
	sb.WriteString("ORDER BY at DESC, id LIMIT " + arg(q.Limit))

	out, err := store.Many(ctx, r.ch, scanEvent, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Event{} // an empty trail serializes as [], not null
	}
	return out, nil
}

func scanEvent(row store.Row) (domain.Event, error) {
	var (
		e    domain.Event
		kind string
	)
	if err := row.Scan(
		&e.ID, &e.At, &e.BPN, &e.CounterpartyAddress, &e.AssetID, &kind,
		&e.NegotiationID, &e.TransferID, &e.Detail, &e.DurationMS,
	); err != nil {
		return domain.Event{}, err
	}
	e.Kind = domain.Kind(kind)
	return e, nil
}
