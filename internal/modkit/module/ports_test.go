package module

import (
	"testing"

	pstrings "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/strings"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/httpkit"
)

// recorderPort mirrors the shape of a seam a module would expose via Ports()
type recorderPort interface {
	Kind() string
}

type recorderImpl struct{ kind string }

func (r recorderImpl) Kind() string { return r.kind }

// fakeModule is a small module double for tests
type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string               { return m.name }
func (m fakeModule) Ports() PortSet             { return m.ports }
func (m fakeModule) MountRoutes(httpkit.Router) {} // no-op, satisfies Module

func TestPortsOf_NilPorts(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "edr", ports: nil}
	if _, ok := PortsOf[recorderPort](m); ok {
		t.Fatalf("expected ok=false when Ports() is nil")
	}
}

func TestPortsOf_DirectInterfaceMatch(t *testing.T) {
	t.Parallel()

	want := recorderImpl{kind: "cache_hit"}
	m := fakeModule{name: "audit", ports: recorderPort(want)}

	got, ok := PortsOf[recorderPort](m)
	if !ok {
		t.Fatalf("expected ok=true for direct interface match")
	}
	if got.Kind() != "cache_hit" {
		t.Fatalf("unexpected Kind, got %q want cache_hit", got.Kind())
	}
}

func TestPortsOf_StructBundle_ExportedField(t *testing.T) {
	t.Parallel()

	// Exported field should be discoverable
	type Ports struct {
		Recorder recorderPort
		Extra    int
	}
	want := recorderImpl{kind: "edr_issued"}
	m := fakeModule{
		name:  "audit",
		ports: Ports{Recorder: want, Extra: 1},
	}

	got, ok := PortsOf[recorderPort](m)
	if !ok {
		t.Fatalf("expected ok=true when bundle has exported Recorder field")
	}
	if got.Kind() != "edr_issued" {
		t.Fatalf("unexpected Kind, got %q want edr_issued", got.Kind())
	}
}

func TestPortsOf_StructBundle_UnexportedField_Ignored(t *testing.T) {
	t.Parallel()

	// Unexported field should be ignored by PortsOf
	type ports struct {
		recorder recorderPort // unexported
		extra    int
	}
	m := fakeModule{
		name:  "audit",
		ports: ports{recorder: recorderImpl{kind: "x"}, extra: 2},
	}

	if _, ok := PortsOf[recorderPort](m); ok {
		t.Fatalf("expected ok=false when only unexported field implements T")
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "proxy", ports: nil}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic from MustPortsOf when port missing")
		}
		msg, _ := r.(string)
		if msg == "" || !pstrings.Contains(msg, "proxy") || !pstrings.Contains(msg, "requested port not found") {
			t.Fatalf("panic message should include module name and hint, got %q", msg)
		}
	}()

	_ = MustPortsOf[recorderPort](m) // should panic
}

func TestMustPortsOf_ReturnsValue(t *testing.T) {
	t.Parallel()

	m := fakeModule{
		name:  "audit",
		ports: recorderPort(recorderImpl{kind: "proxied"}), // direct match so PortsOf succeeds
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("did not expect panic, got %v", r)
		}
	}()

	got := MustPortsOf[recorderPort](m) // should not panic; should return the value
	if got.Kind() != "proxied" {
		t.Fatalf("unexpected Kind from MustPortsOf, got %q want proxied", got.Kind())
	}
}
