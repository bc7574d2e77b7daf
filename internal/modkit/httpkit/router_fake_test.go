package httpkit

import (
	"net/http"

	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
)

// verbCall is one recorded route registration
type verbCall struct {
	verb string
	path string
	ph   phttp.Handler
	h    http.Handler
}

// fakeRouter records registrations so the mount helpers can be asserted
// without standing up chi. Route and Group hand the fake back to the
// closure, so nested registrations land in the same record
type fakeRouter struct {
	prefixes  []string
	useCalls  int
	lastMWLen int
	mountHits int

	verbCalls []verbCall
}

func (f *fakeRouter) rec(verb, path string, ph phttp.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{verb: verb, path: path, ph: ph})
}

func (f *fakeRouter) Mux() http.Handler { return http.NewServeMux() }

func (f *fakeRouter) Route(prefix string, fn func(Router)) {
	f.prefixes = append(f.prefixes, prefix)
	fn(f)
}

func (f *fakeRouter) Group(fn func(Router)) { fn(f) }

func (f *fakeRouter) Use(mw ...func(http.Handler) http.Handler) {
	f.useCalls++
	f.lastMWLen = len(mw)
}

func (f *fakeRouter) Handle(path string, h http.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{verb: "HANDLE", path: path, h: h})
}

func (f *fakeRouter) Get(path string, h phttp.Handler)     { f.rec("GET", path, h) }
func (f *fakeRouter) Post(path string, h phttp.Handler)    { f.rec("POST", path, h) }
func (f *fakeRouter) Put(path string, h phttp.Handler)     { f.rec("PUT", path, h) }
func (f *fakeRouter) Patch(path string, h phttp.Handler)   { f.rec("PATCH", path, h) }
func (f *fakeRouter) Delete(path string, h phttp.Handler)  { f.rec("DELETE", path, h) }
func (f *fakeRouter) Options(path string, h phttp.Handler) { f.rec("OPTIONS", path, h) }
func (f *fakeRouter) Head(path string, h phttp.Handler)    { f.rec("HEAD", path, h) }
