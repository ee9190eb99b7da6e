package modkit

import "testing"

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()

	b := Build()

	if b.Name != "" {
		t.Fatalf("default Name = %q, want empty", b.Name)
	}
	if b.Ports != nil {
		t.Fatalf("default Ports non-nil")
	}
}

func TestBuild_WithOptions(t *testing.T) {
	t.Parallel()

	type ports struct {
		X int
		Y string
	}
	p := ports{X: 7, Y: "ok"}

	b := Build(
		WithName("split"),
		nil, // tolerated
		WithPorts[ports](p),
	)

	if b.Name != "split" {
		t.Fatalf("Name = %q, want %q", b.Name, "split")
	}
	if got, ok := b.Ports.(ports); !ok || got != p {
		t.Fatalf("Ports mismatch after Build")
	}
}

func TestBuild_LastOptionWins(t *testing.T) {
	t.Parallel()

	b := Build(WithName("a"), WithName("b"), WithPorts(1), WithPorts("two"))
	if b.Name != "b" {
		t.Fatalf("Name = %q, want b", b.Name)
	}
	if s, ok := b.Ports.(string); !ok || s != "two" {
		t.Fatalf("Ports = %v, want two", b.Ports)
	}
}
