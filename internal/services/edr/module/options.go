package module

import (
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
)

// Options controls the EDR engine wiring
type Options struct {
	CacheDriver  string // memory | postgres
	CacheTTL     time.Duration
	Revalidate   bool
	PollInterval time.Duration
	Timeout      time.Duration
}

// FromConfig reads with EDC_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("EDC_")
	return Options{
		CacheDriver:  c.MayEnum("CACHE_DRIVER", "memory", "memory", "postgres"),
		CacheTTL:     c.MayDuration("CACHE_TTL", 60*time.Second),
		Revalidate:   c.MayBool("CACHE_REVALIDATE", true),
		PollInterval: c.MayDuration("NEGOTIATION_POLL_INTERVAL", time.Second),
		Timeout:      c.MayDuration("NEGOTIATION_TIMEOUT", 15*time.Second),
	}
}
