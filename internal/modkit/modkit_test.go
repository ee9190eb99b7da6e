package modkit

import (
	"strings"
	"testing"
)

// FooPort is a tiny test interface that our Ports() payloads can implement
type FooPort interface {
	Foo() int
}

type fooImpl struct{ v int }

func (f fooImpl) Foo() int { return f.v }

// fakeModule is a small module double for tests
type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string { return m.name }
func (m fakeModule) Ports() any   { return m.ports }

// compile-time assertion: fakeModule implements Module
var _ Module = fakeModule{}

func TestPortsOf_NilPorts(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "nilPorts", ports: nil}
	if _, ok := PortsOf[FooPort](m); ok {
		t.Fatalf("expected ok=false when Ports() is nil")
	}
}

func TestPortsOf_DirectInterfaceMatch(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "direct", ports: FooPort(fooImpl{v: 42})}

	got, ok := PortsOf[FooPort](m)
	if !ok {
		t.Fatalf("expected ok=true for direct interface match")
	}
	if got.Foo() != 42 {
		t.Fatalf("unexpected Foo value, got %d want 42", got.Foo())
	}
}

func TestPortsOf_StructBundle(t *testing.T) {
	t.Parallel()

	type Ports struct {
		Bar int
		Foo FooPort
	}
	for name, ports := range map[string]any{
		"value":   Ports{Foo: fooImpl{v: 7}, Bar: 1},
		"pointer": &Ports{Foo: fooImpl{v: 7}, Bar: 1},
	} {
		got, ok := PortsOf[FooPort](fakeModule{name: name, ports: ports})
		if !ok {
			t.Fatalf("%s: expected ok=true when bundle has exported Foo field", name)
		}
		if got.Foo() != 7 {
			t.Fatalf("%s: unexpected Foo value, got %d want 7", name, got.Foo())
		}
	}
}

func TestPortsOf_UnexportedAndNilFieldsIgnored(t *testing.T) {
	t.Parallel()

	type ports struct {
		foo FooPort // unexported
		Nil FooPort
	}
	m := fakeModule{name: "unexported", ports: ports{foo: fooImpl{v: 1}}}

	if _, ok := PortsOf[FooPort](m); ok {
		t.Fatalf("expected ok=false when only unexported field implements T")
	}

	var nilPtr *ports
	if _, ok := PortsOf[FooPort](fakeModule{ports: nilPtr}); ok {
		t.Fatalf("expected ok=false for nil pointer bundle")
	}
}

func TestMustPortsOf_PanicsWithModuleName(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "split", ports: nil}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic from MustPortsOf when port missing")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "split") || !strings.Contains(msg, "requested port not found") {
			t.Fatalf("panic message should include module name and hint, got %q", msg)
		}
	}()

	_ = MustPortsOf[FooPort](m) // should panic
}

func TestMustPortsOf_ReturnsValue(t *testing.T) {
	t.Parallel()

	m := fakeModule{name: "ok", ports: FooPort(fooImpl{v: 99})}
	if got := MustPortsOf[FooPort](m); got.Foo() != 99 {
		t.Fatalf("unexpected Foo value from MustPortsOf, got %d want 99", got.Foo())
	}
}
