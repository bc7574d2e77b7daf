package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
)

// tagMw records tag each time the middleware runs
func tagMw(order *[]string, tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestOptions_SettersWriteCfg(t *testing.T) {
	t.Parallel()

	var c buildCfg
	for _, o := range []Option{WithName("edr"), WithPrefix("/edrs")} {
		o(&c)
	}
	if c.name != "edr" || c.prefix != "/edrs" {
		t.Fatalf("cfg after setters: %+v", c)
	}
}

func TestWithMiddlewares_AppendsAcrossCalls(t *testing.T) {
	t.Parallel()

	var order []string
	var c buildCfg
	WithMiddlewares(tagMw(&order, "guard"), tagMw(&order, "audit"))(&c)
	WithMiddlewares(tagMw(&order, "throttle"))(&c)

	if len(c.mw) != 3 {
		t.Fatalf("middleware count = %d, want 3", len(c.mw))
	}

	// assemble the chain the way MountUnder does: first option runs first
	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/edrs", nil))

	want := []string{"guard", "audit", "throttle"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("position %d ran %q, want %q (full order %v)", i, order[i], want[i], order)
		}
	}
}

func TestWithPorts_KeepsConcreteType(t *testing.T) {
	t.Parallel()

	type ports struct {
		Requester string
		Retries   int
	}

	var c buildCfg
	WithPorts(ports{Requester: "edr", Retries: 2})(&c)

	got, ok := c.ports.(ports)
	if !ok {
		t.Fatalf("ports type = %T, want ports", c.ports)
	}
	if got.Requester != "edr" || got.Retries != 2 {
		t.Fatalf("ports value: %+v", got)
	}
}

func TestRouterHooks_SetAndInvoke(t *testing.T) {
	t.Parallel()

	var c buildCfg
	subCalls, regCalls := 0, 0

	WithSubrouter(func(r phttp.Router) phttp.Router { subCalls++; return r })(&c)
	WithRegister(func(phttp.Router) { regCalls++ })(&c)

	if c.subrouter == nil || c.register == nil {
		t.Fatal("hooks not stored")
	}
	if out := c.subrouter(nil); out != nil {
		t.Fatalf("factory should hand back its input, got %v", out)
	}
	c.register(nil)

	if subCalls != 1 || regCalls != 1 {
		t.Fatalf("hook calls sub=%d reg=%d, want 1 each", subCalls, regCalls)
	}
}
