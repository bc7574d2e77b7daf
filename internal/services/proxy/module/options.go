package module

import (
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
)

// Options controls the forwarder wiring
type Options struct {
	Timeout time.Duration // per forwarded data-plane request

	// ForwardHeaders extends the caller-header allowlist beyond the
	// builtin Accept, Content-Type, and Edc-* set
	ForwardHeaders []string

	// MaxInflight caps concurrent pass-through requests; 0 means no cap
	MaxInflight int
}

// FromConfig reads with EDC_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("EDC_")
	return Options{
		Timeout:        c.MayDuration("PROXY_TIMEOUT", 30*time.Second),
		ForwardHeaders: c.MayCSV("PROXY_FORWARD_HEADERS", nil),
		MaxInflight:    c.MayInt("PROXY_MAX_INFLIGHT", 0),
	}
}
