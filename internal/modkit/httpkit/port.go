// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"crypto/sha3"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	perrs "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
)

// KeyFunc validates a presented API key and returns the caller principal
type KeyFunc func(key string) (principal string, err error)

// Port implements middleware.AuthPort by reading X-Api-Key and delegating to a KeyFunc
type Port struct {
	parse KeyFunc
}

// NewPortFunc builds a Port from a validator function
func NewPortFunc(fn KeyFunc) *Port {
	return &Port{parse: fn}
}

// StaticKeyPort accepts exactly one key, compared in constant time. The key's
// digest becomes the caller principal so EDR cache entries negotiated under
// different keys never alias
func StaticKeyPort(key string) *Port {
	return NewPortFunc(func(k string) (string, error) {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) != 1 {
			return "", perrs.Unauthorizedf("invalid api key")
		}
		sum := sha3.Sum256([]byte(k))
		return "key-" + hex.EncodeToString(sum[:4]), nil
	})
}

// Parse extracts and validates the X-Api-Key header.
// The validator's error detail never reaches the wire; callers only ever see
// a generic unauthorized so probing requests learn nothing about the key
func (p *Port) Parse(r *http.Request) (string, error) {
	k := strings.TrimSpace(r.Header.Get("X-Api-Key"))
	if k == "" {
		return "", perrs.Unauthorizedf("missing api key")
	}

	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid api key")
	}

	principal, err := p.parse(k)
	if err != nil {
		return "", perrs.Unauthorizedf("invalid api key")
	}
	return principal, nil
}
