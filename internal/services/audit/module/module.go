// Package module wires the audit trail into the API using modkit
package module

import (
	"context"
	"net/http"

	modkit "github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"

	audithttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/http"
	auditrepo "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/repo"
	auditsvc "github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/service"
)

// Module implements the audit module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *auditsvc.Svc
}

// New constructs the audit module. Without a ClickHouse seam the recorder
// degrades to a log-only sink and the listing reports the trail as disabled
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("audit"),
		modkit.WithPrefix("/audit"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)

	var storage auditrepo.Storage
	if deps.CH != nil {
		storage = auditrepo.NewCH(deps.CH)
	}

	svc := auditsvc.New(storage, auditsvc.Config{
		QueueSize:  o.QueueSize,
		BatchSize:  o.BatchSize,
		FlushEvery: o.FlushEvery,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Recorder: svc, Service: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		audithttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Close drains and stops the recorder's write pipeline
func (m *Module) Close(ctx context.Context) error { return m.svc.Close(ctx) }

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
