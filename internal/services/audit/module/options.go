package module

import (
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
)

// Options tunes the audit write pipeline
type Options struct {
	QueueSize  int
	BatchSize  int
	FlushEvery time.Duration
}

// FromConfig reads with EDC_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("EDC_")
	return Options{
		QueueSize:  c.MayInt("AUDIT_QUEUE", 1024),
		BatchSize:  c.MayInt("AUDIT_BATCH", 64),
		FlushEvery: c.MayDuration("AUDIT_FLUSH_INTERVAL", 2*time.Second),
	}
}
