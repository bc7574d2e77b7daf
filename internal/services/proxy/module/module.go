// Package module wires the data-plane proxy into the API using modkit
package module

import (
	"net/http"

	modkit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"

	proxyhttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/http"
	proxysvc "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/proxy/service"
)

// Module implements the proxy module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *proxysvc.Svc
}

// New constructs the proxy module. The EDR facade is mandatory and arrives
// through WithPorts(Ports{EDR: ...})
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("proxy"),
		modkit.WithPrefix("/assets"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.EDR == nil {
		panic("proxy module requires the EDR requester port (from services/edr)")
	}

	svc := proxysvc.New(injected.EDR, injected.Audit, proxysvc.Config{
		Timeout:        o.Timeout,
		ForwardHeaders: o.ForwardHeaders,
	})

	mws := b.Mw
	if o.MaxInflight > 0 {
		// shed load before it reaches the data plane; queued requests wait
		// at most one forward timeout before a 503
		mws = append([]func(http.Handler) http.Handler{
			middleware.ThrottleBacklog(o.MaxInflight, o.MaxInflight, o.Timeout),
		}, mws...)
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       mws,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = injected

	external := b.Register
	m.register = func(r httpkit.Router) {
		proxyhttp.Register(r, m.svc)
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
