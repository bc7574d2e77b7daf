// Package api provides the HTTP API for the application
package api

import (
	"context"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/module"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/swaggerkit"

	metamod "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/api/meta/module"
	auditmod "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/module"
	edrmod "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/module"
	proxymod "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger
	// Connector is the shared management API client; when nil the EDR
	// module builds its own from EDC_CONNECTOR_* config
	Connector      *connector.Client
	EnableSwagger  bool
	EnableProfiler bool
}

// Closer tears down background work started by Mount
type Closer func(context.Context) error

// Mount mounts the API service onto the given router. The returned Closer
// drains the audit write pipeline and must run before the process exits
func Mount(r phttp.Router, opt Options) Closer {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Construct the audit module first and extract its recorder port
	auditMod := auditmod.New(deps)
	rec := module.MustPortsOf[auditmod.Ports](auditMod).Recorder

	// The EDR module owns the negotiation engine; its requester port feeds
	// the data-plane proxy
	edrMod := edrmod.New(deps, modkit.WithPorts(edrmod.Ports{
		Gateway: opt.Connector,
		Audit:   rec,
	}))
	requester := module.MustPortsOf[edrmod.Ports](edrMod).Requester

	proxyMod := proxymod.New(deps, modkit.WithPorts(proxymod.Ports{
		EDR:   requester,
		Audit: rec,
	}))

	var metaPorts metamod.Ports
	if opt.Connector != nil {
		metaPorts.Connector = opt.Connector
	}
	metaMod := metamod.New(deps, modkit.WithPorts(metaPorts))

	mods := []module.Module{
		auditMod,
		edrMod,
		proxyMod,
	}

	apiKey := opt.Config.Prefix("EDC_").MayString("API_KEY", "")

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		// meta stays outside the key guard so probes need no credentials
		module.Register(metaMod.Name(), metaMod.Ports())
		metaMod.MountRoutes(api)

		mount := func(gr httpkit.Router) {
			for _, m := range mods {
				// register each module's ports under its own name (for cross-module lookups)
				module.Register(m.Name(), m.Ports())

				// mount module routes under its Prefix()
				m.MountRoutes(gr)
			}
		}
		if apiKey != "" {
			httpkit.Protected(api, httpkit.StaticKeyPort(apiKey), mount)
		} else {
			mount(api)
		}
	})

	return func(ctx context.Context) error {
		if c, ok := auditMod.(interface{ Close(context.Context) error }); ok {
			return c.Close(ctx)
		}
		return nil
	}
}
