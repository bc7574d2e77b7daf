package module

import (
	auditdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
)

// Ports exposes the audit surfaces. Recorder feeds the EDR and proxy flows;
// Service adds the ops listing
type Ports struct {
	Recorder auditdom.RecorderPort
	Service  auditdom.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
