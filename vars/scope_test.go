package vars

import "testing"

func TestScopeSetRemoveOnNull(t *testing.T) {
	s := NewScope()
	s.Set("x", "3")
	if _, ok := s.Get("x"); !ok {
		t.Fatal("expected x to be set")
	}
	s.Set("x", "null")
	if _, ok := s.Get("x"); ok {
		t.Fatal("setting to null should remove the variable")
	}
}

func TestScopeSetEmptyRemoves(t *testing.T) {
	s := NewScope()
	s.Set("x", "3")
	s.Set("x", "")
	if _, ok := s.Get("x"); ok {
		t.Fatal("setting to empty should remove the variable")
	}
}

func TestChainLookupOrder(t *testing.T) {
	global := NewScope()
	root := NewScope()
	chain := NewChain(root, global)

	global.Set("k", "from-global")
	if got := chain.GetString("k"); got != "from-global" {
		t.Fatalf("got %q", got)
	}

	root.Set("k", "from-root")
	if got := chain.GetString("k"); got != "from-root" {
		t.Fatalf("got %q", got)
	}

	chain.Local.Set("k", "from-local")
	if got := chain.GetString("k"); got != "from-local" {
		t.Fatalf("got %q", got)
	}
}

func TestChainMissingYieldsNull(t *testing.T) {
	chain := NewChain(NewScope(), NewScope())
	if got := chain.GetString("missing"); got != Null {
		t.Fatalf("got %q, want %q", got, Null)
	}
}

// TestScopeShadowing implements the "Scope shadowing" testable property
// from spec §8: setl K a; setg K b; get K == a; rem K; get K == b.
func TestScopeShadowing(t *testing.T) {
	global := NewScope()
	root := NewScope()
	chain := NewChain(root, global)

	chain.ScopeFor(TargetLocal).Set("K", "a")
	chain.ScopeFor(TargetGlobal).Set("K", "b")

	if got := chain.GetString("K"); got != "a" {
		t.Fatalf("before rem: got %q, want a", got)
	}

	chain.RemoveEverywhere("K")

	if got := chain.GetString("K"); got != "b" {
		t.Fatalf("after rem: got %q, want b", got)
	}
}

func TestClearEverywhere(t *testing.T) {
	global := NewScope()
	root := NewScope()
	chain := NewChain(root, global)
	chain.Local.Set("a", "1")
	root.Set("b", "2")
	global.Set("c", "3")

	chain.ClearEverywhere()

	for _, name := range []string{"a", "b", "c"} {
		if got := chain.GetString(name); got != Null {
			t.Errorf("after clear, %s = %q, want null", name, got)
		}
	}
}
