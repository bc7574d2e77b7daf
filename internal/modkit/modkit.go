package modkit

import (
	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
)

// Module is the single surface the composition root needs from a service module.
// Kept to three methods so modules stay decoupled from each other
type Module interface {
	// MountRoutes attaches the module's HTTP routes to the given router seam
	MountRoutes(r phttp.Router)
	// Ports returns the module's cross-wiring surface (a module-owned struct),
	// e.g. the EDR module exposes token resolution to the proxy this way
	Ports() any

	// Name reports the registry name, e.g. "edr" or "proxy"
	Name() string
}
