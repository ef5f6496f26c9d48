package expand

import (
	"testing"

	"github.com/grindhollow/cheatscript/vars"
)

func newFrame(params ...string) *Frame {
	return &Frame{Params: params, Scope: vars.NewChain(vars.NewScope(), vars.NewScope())}
}

func TestExpandArgsJoined(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a", "b", "c")
	got := e.Expand("/say $args", fr)
	if got != "/say a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandArgsIndex(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a", "b", "c")
	if got := e.Expand("$args[0]", fr); got != "a" {
		t.Fatalf("got %q, want a", got)
	}
}

func TestExpandArgsSlice(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a", "b", "c", "d")
	if got := e.Expand("$args[1:3]", fr); got != "b c d" {
		t.Fatalf("got %q, want %q", got, "b c d")
	}
}

func TestExpandArgsCount(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a", "b")
	if got := e.Expand("$args.count", fr); got != "2" {
		t.Fatalf("got %q, want 2", got)
	}
}

func TestExpandMemMissingYieldsNull(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame()
	if got := e.Expand("$mem[health]", fr); got != "null" {
		t.Fatalf("got %q, want null", got)
	}
}

func TestExpandMemFromGlobal(t *testing.T) {
	e := New(nil, nil)
	global := vars.NewScope()
	global.Set("health", "100")
	fr := &Frame{Scope: vars.NewChain(vars.NewScope(), global)}
	if got := e.Expand("$mem[health]", fr); got != "100" {
		t.Fatalf("got %q, want 100", got)
	}
}

func TestExpandMemIgnoresLocal(t *testing.T) {
	e := New(nil, nil)
	root := vars.NewScope()
	root.Set("x", "from-root")
	chain := vars.NewChain(root, vars.NewScope())
	chain.Local.Set("x", "from-local")
	fr := &Frame{Scope: chain}
	if got := e.Expand("$mem[x]", fr); got != "from-root" {
		t.Fatalf("$mem must skip Local; got %q", got)
	}
}

func TestExpandResultCallsHook(t *testing.T) {
	var capturedBody string
	e := New(func(body string, fr *Frame) (string, error) {
		capturedBody = body
		return "42", nil
	}, nil)
	fr := newFrame()
	if got := e.Expand("hp=$result[ #setl hp 42 ]", fr); got != "hp=42" {
		t.Fatalf("got %q", got)
	}
	if capturedBody == "" {
		t.Fatal("expected RunSubScript to be invoked with a body")
	}
}

func TestExpandBrowseHook(t *testing.T) {
	e := New(nil, func(options []string) (string, error) {
		return "chosen.txt", nil
	})
	fr := newFrame()
	if got := e.Expand("$browse[a|b]", fr); got != "chosen.txt" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandNoneNeverMatches(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame()
	if got := e.Expand("$none", fr); got != "$none" {
		t.Fatalf("$none must never expand, got %q", got)
	}
}

func TestExpandDisabledPrefix(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a", "b")
	got := e.Expand("#call target $args", fr, "$args", "$args.count")
	if got != "#call target $args" {
		t.Fatalf("disabled prefix should not expand, got %q", got)
	}
}

func TestExpandMalformedBracketSkipped(t *testing.T) {
	e := New(nil, nil)
	fr := newFrame("a")
	got := e.Expand("$args[0 and $mem[hp]", fr)
	// $args[0 has no closing bracket; the engine should skip past it and
	// still expand $mem[hp] (to "null", since hp is unset).
	if got != "$args[0 and null" {
		t.Fatalf("got %q", got)
	}
}
