// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
)

// Module is what the API composition root mounts: routes plus a bundle of
// ports other modules may borrow
// kept sibling to modkit so a module can export its own ports type without import knots
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
