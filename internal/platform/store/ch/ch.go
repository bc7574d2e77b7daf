// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"
	"errors"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// ClientName and ClientTag flow into the client info the server logs
	ClientName string
	ClientTag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a native protocol connection pool
// zero value is safe; calls report the client as not open
type CH struct {
	conn driver.Conn
}

var errNotOpen = errors.New("ch: client not open")

// Open parses the DSN and builds the pool. The first dial happens lazily on
// use, so Open succeeds without a reachable server
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ClientInfo = BuildClientInfo(cfg.ClientName, cfg.ClientTag)

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	return &CH{conn: conn}, nil
}

// Ping verifies connectivity
func (c *CH) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errNotOpen
	}
	return c.conn.Ping(ctx)
}

// Insert appends rows to one batch and sends it. table may be a bare table
// name or a full INSERT statement when the caller pins column order
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if c == nil || c.conn == nil {
		return errNotOpen
	}
	batch, err := c.conn.PrepareBatch(ctx, insertStatement(table))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if c == nil || c.conn == nil {
		return nil, errNotOpen
	}
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close closes the pool
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// insertStatement normalizes the Insert target
func insertStatement(table string) string {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(table)), "INSERT") {
		return table
	}
	return "INSERT INTO " + table
}
