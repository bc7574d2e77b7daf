// Package module wires the EDR engine into the API using modkit
package module

import (
	"net/http"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	modkit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/repokit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"

	edrhttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/http"

	edrcache "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/cache"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
	edrrepo "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/repo"
	edrsvc "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/service"
)

// Module implements the EDR module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *edrsvc.Svc
}

// New constructs the EDR module. The connector gateway and the audit
// recorder arrive through WithPorts; a missing gateway is built from
// EDC_CONNECTOR_* config and a missing recorder leaves the engine unaudited
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("edr"),
		modkit.WithPrefix("/edr"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)

	var ports Ports
	if p, ok := b.Ports.(Ports); ok {
		ports = p
	}

	cli := ports.Gateway
	if cli == nil {
		cli = connector.NewClient(connector.FromConfig(deps.Cfg.Prefix("EDC_CONNECTOR_")))
		ports.Gateway = cli
	}

	var cacheStore domain.CachePort
	switch o.CacheDriver {
	case "postgres":
		cacheStore = repokit.MustBind(edrrepo.NewPG(), deps.PG)
	default:
		cacheStore = edrcache.NewMemory()
	}

	svc := edrsvc.New(cli, cacheStore, ports.Audit, edrsvc.Config{
		PollInterval: o.PollInterval,
		Timeout:      o.Timeout,
		CacheTTL:     o.CacheTTL,
		Revalidate:   o.Revalidate,
	})
	svc.Rekey(func(apiKey string) edrsvc.Gateway { return cli.WithAPIKey(apiKey) })
	ports.Requester = svc

	// every EDR endpoint takes and returns JSON, so reject anything else
	// before it reaches a handler
	mws := append([]func(http.Handler) http.Handler{
		middleware.AllowContentType("application/json"),
		middleware.ContentCharset("", "utf-8"),
	}, b.Mw...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       mws,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = ports

	external := b.Register
	m.register = func(r httpkit.Router) {
		edrhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
