package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perrs "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/middleware"
)

// keyPort behaves like the real API-key guard: it checks X-Api-Key and
// hands back a digest-style principal
type keyPort struct{ want string }

func (p keyPort) Parse(r *http.Request) (string, error) {
	if r.Header.Get("X-Api-Key") != p.want {
		return "", perrs.Unauthorizedf("invalid api key")
	}
	return "key-9f86d081", nil
}

func statusOnly(w http.ResponseWriter, status int, _ any) {
	w.WriteHeader(status)
}

func TestAuth_NilPortPassesThrough(t *testing.T) {
	// meta probes mount without a guard; nil must mean wide open
	var nextCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	middleware.Auth(nil, statusOnly)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/edrs", nil))

	if !nextCalled {
		t.Fatal("expected next to be called")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestAuth_BadKeyRejectedBeforeHandler(t *testing.T) {
	mw := middleware.Auth(keyPort{want: "sekrit"}, statusOnly)

	var nextCalled bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/edrs", nil)
	req.Header.Set("X-Api-Key", "nope")
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)

	if nextCalled {
		t.Fatal("handler ran despite a rejected key")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestAuth_PrincipalReachesHandlerContext(t *testing.T) {
	mw := middleware.Auth(keyPort{want: "sekrit"}, statusOnly)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = net.Principal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/edrs", nil)
	req.Header.Set("X-Api-Key", "sekrit")
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if seen != "key-9f86d081" {
		t.Fatalf("principal on context = %q, want key-9f86d081", seen)
	}
}
