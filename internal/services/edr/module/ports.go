package module

import (
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	auditdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	edrdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Ports is the module's cross-module surface. Gateway and Audit are injected
// by the composition root (Gateway falls back to one built from config, Audit
// may stay nil); Requester is filled by New and consumed by the proxy module
type Ports struct {
	Gateway   *connector.Client
	Audit     auditdom.RecorderPort
	Requester edrdom.RequesterPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
