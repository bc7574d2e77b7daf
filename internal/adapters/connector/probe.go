package connector

import (
	"context"
	"time"
)

const defaultWaitInterval = 10 * time.Second

// WaitReady blocks until the connector readiness endpoint reports healthy,
// probing every interval. It retries indefinitely; only ctx cancellation
// makes it give up. Once it returns nil it is not meant to be called again:
// later connector outages surface as per-request gateway errors.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultWaitInterval
	}
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		attempt++
		err := c.Readiness(ctx)
		if err == nil {
			c.log.Info().Int("attempt", attempt).Msg("connector ready")
			return nil
		}
		c.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", interval).
			Msg("connector not ready")
		c.sleep(interval)
	}
}

// Ping satisfies the store Pinger shape so readiness handlers can check the
// connector alongside the databases
func (c *Client) Ping(ctx context.Context) error { return c.Readiness(ctx) }
