package store

import (
	"context"
	"fmt"

	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
)

// Querier is the minimal read seam the row mappers need. Both the Postgres
// TxRunner and the Clickhouse seam satisfy it, so repos on either backend
// share one scanning idiom.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// One maps the single matching row into T via scan. A miss is
// perr.ErrNotFound and more than one match is an error, so callers can
// treat the query as a by-key lookup.
func One[T any](ctx context.Context, q Querier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(rowFromRows{rows: rows})
	if err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, fmt.Errorf("expected 1 row, got more")
	}
	return item, rows.Err()
}

// Many maps every row into []T in result-set order. An iteration error
// discards any partially scanned results; callers never see a slice
// alongside a non-nil error.
func Many[T any](ctx context.Context, q Querier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rowFromRows{rows: rows})
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowFromRows exposes the current Rows position as a single-row scanner
type rowFromRows struct{ rows Rows }

func (r rowFromRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
