package module

import (
	auditdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	edrdom "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Ports declares the injected ports for this module. EDR is required;
// Audit may stay nil
type Ports struct {
	EDR   edrdom.RequesterPort
	Audit auditdom.RecorderPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
