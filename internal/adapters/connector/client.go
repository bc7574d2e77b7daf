// Package connector provides a typed client for the management API of an
// Eclipse Dataspace Connector control plane
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultAPIKeyHeader     = "X-Api-Key"
	defaultCatalogPath      = "/management/v3/catalog/request"
	defaultEDRsPath         = "/management/v2/edrs"
	defaultNegotiationsPath = "/management/v2/contractnegotiations"
	defaultTransfersPath    = "/management/v2/transferprocesses"
	defaultReadinessPath    = "/api/check/readiness"
	defaultDSPPath          = "/api/v1/dsp"
)

// Options configures the Client
type Options struct {
	// BaseURL of the locally adjacent control plane
	BaseURL string

	// APIKey is sent on every management call when non-empty
	APIKey       string
	APIKeyHeader string

	Timeout time.Duration

	// Path templates, overridable for nonstandard deployments
	CatalogPath      string
	EDRsPath         string
	NegotiationsPath string
	TransfersPath    string
	ReadinessPath    string
	DSPPath          string
}

// FromConfig reads Options from an EDC_CONNECTOR_ prefixed view. The base
// URL is required and must be absolute; everything else has a default
func FromConfig(cfg config.Conf) Options {
	return Options{
		BaseURL:          cfg.MustURL("URL").String(),
		APIKey:           cfg.MayString("API_KEY", ""),
		APIKeyHeader:     cfg.MayString("API_KEY_HEADER", defaultAPIKeyHeader),
		Timeout:          cfg.MayDuration("TIMEOUT", defaultTimeout),
		CatalogPath:      cfg.MayString("CATALOG_PATH", defaultCatalogPath),
		EDRsPath:         cfg.MayString("EDRS_PATH", defaultEDRsPath),
		NegotiationsPath: cfg.MayString("NEGOTIATIONS_PATH", defaultNegotiationsPath),
		TransfersPath:    cfg.MayString("TRANSFERS_PATH", defaultTransfersPath),
		ReadinessPath:    cfg.MayString("READINESS_PATH", defaultReadinessPath),
		DSPPath:          cfg.MayString("DSP_PATH", defaultDSPPath),
	}
}

// Client is a stateless management-API client. It never retries and never
// sleeps; retry policy belongs to the orchestrator and the startup supervisor.
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.APIKeyHeader == "" {
		o.APIKeyHeader = defaultAPIKeyHeader
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.CatalogPath == "" {
		o.CatalogPath = defaultCatalogPath
	}
	if o.EDRsPath == "" {
		o.EDRsPath = defaultEDRsPath
	}
	if o.NegotiationsPath == "" {
		o.NegotiationsPath = defaultNegotiationsPath
	}
	if o.TransfersPath == "" {
		o.TransfersPath = defaultTransfersPath
	}
	if o.ReadinessPath == "" {
		o.ReadinessPath = defaultReadinessPath
	}
	if o.DSPPath == "" {
		o.DSPPath = defaultDSPPath
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("connector"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// WithAPIKey returns a client that authenticates with the given management
// key instead of the configured one. The underlying transport is shared.
func (c *Client) WithAPIKey(key string) *Client {
	if key == "" || key == c.opts.APIKey {
		return c
	}
	cc := *c
	cc.opts.APIKey = key
	return &cc
}

// DSPURL appends the DSP suffix to a counterparty address when missing
func (c *Client) DSPURL(counterpartyAddress string) string {
	u := strings.TrimRight(counterpartyAddress, "/")
	if strings.HasSuffix(u, c.opts.DSPPath) {
		return u
	}
	return u + c.opts.DSPPath
}

// do issues one management call and returns the response body.
// Failure mapping: transport errors become GatewayUnreachable, 404 becomes
// GatewayNotFound, any other non-2xx becomes GatewayRejected with a bounded
// body excerpt.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "connector encode request failed")
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, rd)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "connector new request failed")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.APIKey != "" {
		req.Header.Set(c.opts.APIKeyHeader, c.opts.APIKey)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.GatewayUnreachablef("connector %s %s: %v", method, path, err)
	}
	defer func() {
		if cerr := drainAndClose(resp.Body); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("connector close body failed")
		}
	}()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("connector http response")

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, perr.GatewayUnreachablef("connector %s %s: read body: %v", method, path, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return b, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, perr.GatewayNotFoundf("connector %s %s: not found", method, path)
	default:
		return nil, perr.GatewayRejectedf("connector %s %s: status %d body %s", method, path, resp.StatusCode, excerpt(b))
	}
}
