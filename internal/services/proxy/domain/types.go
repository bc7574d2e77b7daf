// Package domain defines the data-plane proxy types and ports
package domain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	edrdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// ForwardRequest is one data-plane request to run against a resolved EDR
type ForwardRequest struct {
	Method string // GET or POST
	Path   string // joined onto the EDR's data plane URL
	Query  url.Values
	// Header is the caller's header set; the forwarder drops everything but
	// the forwardable subset and owns Authorization itself
	Header http.Header
	Body   []byte
}

// ForwardResult mirrors the upstream response transparently. Non-2xx data
// plane statuses are results, not errors; only credential rejection and
// transport failures surface as errors
type ForwardResult struct {
	Status int
	Header http.Header
	Body   []byte
}

// ProxyInput is the combined resolve-and-forward operation body
type ProxyInput struct {
	CounterParty edrdom.CounterpartyInput  `json:"counterParty" validate:"required"`
	Asset        edrdom.AssetInput         `json:"asset" validate:"required"`
	Policies     []edrdom.PolicyConstraint `json:"policies,omitempty" validate:"omitempty,max=32"`

	Method    string            `json:"method" validate:"required,oneof=GET POST" example:"GET"`
	Path      string            `json:"path" validate:"required,max=2048" example:"/shell-descriptors"`
	Query     map[string]string `json:"query,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      json.RawMessage   `json:"body,omitempty" swaggertype:"object"`
	Requester string            `json:"requester,omitempty" validate:"omitempty,max=128"`
}

// ForwardRequest converts the transport body into the forwarder's shape
func (in ProxyInput) ForwardRequest() ForwardRequest {
	q := url.Values{}
	for k, v := range in.Query {
		q.Set(k, v)
	}
	h := http.Header{}
	for k, v := range in.Headers {
		h.Set(k, v)
	}
	return ForwardRequest{
		Method: in.Method,
		Path:   in.Path,
		Query:  q,
		Header: h,
		Body:   in.Body,
	}
}

// ForwarderPort is the proxy surface
type ForwarderPort interface {
	// Forward runs one data-plane request with the EDR's token. A 401/403
	// invalidates the cache key and returns CodeCredentialExpired
	Forward(ctx context.Context, key edrdom.Key, edr edrdom.EDR, req ForwardRequest) (ForwardResult, error)
	// Request is the combined operation: resolve, forward, and on credential
	// expiry resolve fresh and forward exactly once more
	Request(ctx context.Context, in ProxyInput) (ForwardResult, error)
}
